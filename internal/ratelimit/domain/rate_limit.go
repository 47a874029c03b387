package domain

import (
	"math"
	"time"
)

// Action names the operation a request counts against. With the shared
// scope every action maps to the empty key.
type Action string

const (
	ActionShared     Action = ""
	ActionNewsletter Action = "newsletter"
	ActionContact    Action = "contact"
)

// RateLimit is the fixed-window counter for one (email, action) key.
type RateLimit struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"not null;uniqueIndex:idx_rate_limits_key"`
	Action      string    `json:"action" gorm:"not null;default:'';uniqueIndex:idx_rate_limits_key"`
	Count       int       `json:"count" gorm:"not null"`
	WindowStart time.Time `json:"window_start" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RateLimit) TableName() string {
	return "rate_limits"
}

// Policy is the window length and the number of requests allowed in it.
type Policy struct {
	Window time.Duration
	Max    int
}

func DefaultPolicy() Policy {
	return Policy{Window: time.Hour, Max: 1}
}

type Decision struct {
	Allowed           bool `json:"allowed"`
	RetryAfterSeconds int  `json:"retry_after_seconds,omitempty"`
}

// Apply decides the request against rec and mutates rec into the state to
// persist. rec == nil means no record exists yet; the returned record is then
// a fresh one. A denied decision leaves the record unchanged.
func (p Policy) Apply(rec *RateLimit, now time.Time) (*RateLimit, Decision) {
	if rec == nil {
		return &RateLimit{Count: 1, WindowStart: now, UpdatedAt: now}, Decision{Allowed: true}
	}

	if now.Sub(rec.WindowStart) > p.Window {
		rec.Count = 1
		rec.WindowStart = now
		rec.UpdatedAt = now
		return rec, Decision{Allowed: true}
	}

	if rec.Count >= p.Max {
		return rec, Decision{Allowed: false, RetryAfterSeconds: p.RetryAfter(rec.WindowStart, now)}
	}

	rec.Count++
	rec.UpdatedAt = now
	return rec, Decision{Allowed: true}
}

// RetryAfter returns whole seconds until the window opened at windowStart
// closes, never less than one.
func (p Policy) RetryAfter(windowStart, now time.Time) int {
	remaining := windowStart.Add(p.Window).Sub(now)
	secs := int(math.Ceil(remaining.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
