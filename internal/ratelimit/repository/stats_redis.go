package repository

import (
	"context"
	"strconv"
	"strings"

	"improtango-backend/internal/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

type redisStatsRecorder struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStatsRecorder counts decisions in two hashes: <prefix>:total with
// allowed/denied fields, and <prefix>:action with <action>:<outcome> fields.
func NewRedisStatsRecorder(rdb *redis.Client, prefix string) StatsRecorder {
	if prefix == "" {
		prefix = "ratelimit:stats"
	}
	return &redisStatsRecorder{rdb: rdb, prefix: strings.Trim(prefix, ":")}
}

func outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func (s *redisStatsRecorder) Record(ctx context.Context, action domain.Action, allowed bool) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	field := outcome(allowed)

	name := string(action)
	if name == "" {
		name = "shared"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
	pipe.HIncrBy(ctx, s.prefix+":action", name+":"+field, 1)
	_, err := pipe.Exec(ctx)
	return err
}

// Totals flattens both hashes into one map: "allowed", "denied" and
// "<action>:<outcome>".
func (s *redisStatsRecorder) Totals(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{"allowed": 0, "denied": 0}
	for _, key := range []string{s.prefix + ":total", s.prefix + ":action"} {
		vals, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		for k, v := range vals {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			out[k] = n
		}
	}
	return out, nil
}

type noopStatsRecorder struct{}

// NewNoopStatsRecorder is used when stats are disabled.
func NewNoopStatsRecorder() StatsRecorder {
	return noopStatsRecorder{}
}

func (noopStatsRecorder) Record(context.Context, domain.Action, bool) error { return nil }

func (noopStatsRecorder) Totals(context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}
