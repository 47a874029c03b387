package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"improtango-backend/internal/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const redisMaxRetries = 10

type redisRateLimitRepository struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisRateLimitRepository keeps each counter in a hash under
// <prefix>:<email>:<action>. Read-modify-write runs under WATCH so
// concurrent checks for one key serialize.
func NewRedisRateLimitRepository(rdb *redis.Client, prefix string) RateLimitRepository {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &redisRateLimitRepository{rdb: rdb, prefix: strings.Trim(prefix, ":")}
}

func (r *redisRateLimitRepository) key(email string, action domain.Action) string {
	return r.prefix + ":" + email + ":" + string(action)
}

func parseRecord(email string, action domain.Action, vals map[string]string) (*domain.RateLimit, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	count, err := strconv.Atoi(vals["count"])
	if err != nil {
		return nil, fmt.Errorf("bad count in rate limit hash: %w", err)
	}
	start, err := strconv.ParseInt(vals["window_start"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad window_start in rate limit hash: %w", err)
	}
	updated, _ := strconv.ParseInt(vals["updated_at"], 10, 64)
	return &domain.RateLimit{
		Email:       email,
		Action:      string(action),
		Count:       count,
		WindowStart: time.Unix(0, start).UTC(),
		UpdatedAt:   time.Unix(0, updated).UTC(),
	}, nil
}

func (r *redisRateLimitRepository) FindByKey(ctx context.Context, email string, action domain.Action) (*domain.RateLimit, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key(email, action)).Result()
	if err != nil {
		return nil, err
	}
	return parseRecord(email, action, vals)
}

func (r *redisRateLimitRepository) CheckAndConsume(ctx context.Context, email string, action domain.Action, policy domain.Policy, now time.Time) (domain.Decision, error) {
	key := r.key(email, action)
	var decision domain.Decision

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		rec, err := parseRecord(email, action, vals)
		if err != nil {
			return err
		}

		updated, d := policy.Apply(rec, now)
		decision = d
		if !d.Allowed {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"count", updated.Count,
				"window_start", updated.WindowStart.UnixNano(),
				"updated_at", updated.UpdatedAt.UnixNano(),
			)
			if updated.Count == 1 {
				// expired keys behave like a reset; keep one extra minute of slack
				pipe.Expire(ctx, key, policy.Window+time.Minute)
			}
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return decision, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.Decision{}, err
	}
	return domain.Decision{}, fmt.Errorf("rate limit check for %s: too much contention", email)
}
