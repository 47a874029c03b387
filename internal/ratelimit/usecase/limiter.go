package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"improtango-backend/internal/ratelimit/domain"
	"improtango-backend/internal/ratelimit/repository"
	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/config"
)

// Limiter gates public submissions per email address.
type Limiter interface {
	// CheckAndConsume decides one request for email and, when allowed,
	// consumes it from the current window.
	CheckAndConsume(ctx context.Context, email string, action domain.Action) (domain.Decision, error)

	// Enforce is CheckAndConsume returning a rate_limited error on denial.
	Enforce(ctx context.Context, email string, action domain.Action) error

	Stats(ctx context.Context) (map[string]int64, error)
	Policy() domain.Policy
}

type limiter struct {
	repo     repository.RateLimitRepository
	stats    repository.StatsRecorder
	policy   domain.Policy
	perScope bool
	now      func() time.Time
}

type Option func(*limiter)

func WithClock(now func() time.Time) Option {
	return func(l *limiter) { l.now = now }
}

func WithStats(stats repository.StatsRecorder) Option {
	return func(l *limiter) {
		if stats != nil {
			l.stats = stats
		}
	}
}

// WithScope selects the key layout. config.ScopePerAction keeps a separate
// counter per action; anything else shares one counter per email.
func WithScope(scope string) Option {
	return func(l *limiter) { l.perScope = scope == config.ScopePerAction }
}

func NewLimiter(repo repository.RateLimitRepository, policy domain.Policy, opts ...Option) Limiter {
	if policy.Window <= 0 {
		policy.Window = time.Hour
	}
	if policy.Max < 1 {
		policy.Max = 1
	}
	l := &limiter{
		repo:   repo,
		stats:  repository.NewNoopStatsRecorder(),
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *limiter) Policy() domain.Policy {
	return l.policy
}

func (l *limiter) key(action domain.Action) domain.Action {
	if l.perScope {
		return action
	}
	return domain.ActionShared
}

func (l *limiter) CheckAndConsume(ctx context.Context, email string, action domain.Action) (domain.Decision, error) {
	key := l.key(action)
	d, err := l.repo.CheckAndConsume(ctx, email, key, l.policy, l.now())
	if err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit check: %w", err)
	}

	if err := l.stats.Record(ctx, action, d.Allowed); err != nil {
		log.Printf("[RateLimit] Failed to record stats: %v", err)
	}
	if !d.Allowed {
		log.Printf("[RateLimit] Denied %s for %s, retry in %ds", action, email, d.RetryAfterSeconds)
	}
	return d, nil
}

func (l *limiter) Enforce(ctx context.Context, email string, action domain.Action) error {
	d, err := l.CheckAndConsume(ctx, email, action)
	if err != nil {
		return apperr.Internal(err)
	}
	if !d.Allowed {
		return apperr.RateLimited(d.RetryAfterSeconds)
	}
	return nil
}

func (l *limiter) Stats(ctx context.Context) (map[string]int64, error) {
	return l.stats.Totals(ctx)
}
