package repository

import (
	"context"
	"time"

	"improtango-backend/internal/ratelimit/domain"
)

// RateLimitRepository applies a policy to the stored counter for a key and
// persists the result atomically.
type RateLimitRepository interface {
	// CheckAndConsume loads the record for (email, action), decides the
	// request under policy at now and writes back the new state when allowed.
	CheckAndConsume(ctx context.Context, email string, action domain.Action, policy domain.Policy, now time.Time) (domain.Decision, error)

	// FindByKey returns the stored record, or nil when none exists.
	FindByKey(ctx context.Context, email string, action domain.Action) (*domain.RateLimit, error)
}

// StatsRecorder counts limiter decisions. Recording is best-effort.
type StatsRecorder interface {
	Record(ctx context.Context, action domain.Action, allowed bool) error
	Totals(ctx context.Context) (map[string]int64, error)
}
