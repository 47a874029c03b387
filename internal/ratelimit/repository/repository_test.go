package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"improtango-backend/internal/ratelimit/domain"
	"improtango-backend/internal/testutil"
	"improtango-backend/pkg/database"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func stores(t *testing.T) map[string]RateLimitRepository {
	_, rdb := testutil.NewRedis(t)
	return map[string]RateLimitRepository{
		"gorm":  NewGormRateLimitRepository(testutil.NewDB(t)),
		"redis": NewRedisRateLimitRepository(rdb, ""),
	}
}

func TestCheckAndConsume_FixedWindow(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := domain.DefaultPolicy()

			d, err := repo.CheckAndConsume(ctx, "ada@example.com", domain.ActionShared, p, t0)
			if err != nil || !d.Allowed {
				t.Fatalf("first: %+v %v", d, err)
			}

			d, err = repo.CheckAndConsume(ctx, "ada@example.com", domain.ActionShared, p, t0.Add(10*time.Minute))
			if err != nil {
				t.Fatalf("second: %v", err)
			}
			if d.Allowed || d.RetryAfterSeconds != 3000 {
				t.Fatalf("expected denial with 3000s, got %+v", d)
			}

			d, err = repo.CheckAndConsume(ctx, "ada@example.com", domain.ActionShared, p, t0.Add(61*time.Minute))
			if err != nil || !d.Allowed {
				t.Fatalf("after window: %+v %v", d, err)
			}

			rec, err := repo.FindByKey(ctx, "ada@example.com", domain.ActionShared)
			if err != nil || rec == nil {
				t.Fatalf("find: %+v %v", rec, err)
			}
			if rec.Count != 1 || !rec.WindowStart.Equal(t0.Add(61*time.Minute)) {
				t.Fatalf("expected reset record, got %+v", rec)
			}
		})
	}
}

func TestCheckAndConsume_KeysAreIndependent(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := domain.DefaultPolicy()

			for _, k := range []struct {
				email  string
				action domain.Action
			}{
				{"ada@example.com", domain.ActionContact},
				{"ada@example.com", domain.ActionNewsletter},
				{"bob@example.com", domain.ActionContact},
			} {
				d, err := repo.CheckAndConsume(ctx, k.email, k.action, p, t0)
				if err != nil || !d.Allowed {
					t.Fatalf("%s/%s: %+v %v", k.email, k.action, d, err)
				}
			}

			missing, err := repo.FindByKey(ctx, "carol@example.com", domain.ActionShared)
			if err != nil || missing != nil {
				t.Fatalf("expected no record, got %+v %v", missing, err)
			}
		})
	}
}

func TestCheckAndConsume_ConcurrentFirstRequests(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := domain.DefaultPolicy()

			const n = 8
			var wg sync.WaitGroup
			results := make(chan bool, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					d, err := repo.CheckAndConsume(ctx, "race@example.com", domain.ActionShared, p, t0)
					if err != nil {
						t.Errorf("check: %v", err)
						return
					}
					results <- d.Allowed
				}()
			}
			wg.Wait()
			close(results)

			allowed := 0
			for ok := range results {
				if ok {
					allowed++
				}
			}
			if allowed != 1 {
				t.Fatalf("expected exactly one allowed request, got %d", allowed)
			}
		})
	}
}

func TestGormCheckAndConsume_JoinsCallerTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormRateLimitRepository(db)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	_ = tx.Transaction(ctx, func(ctx context.Context) error {
		d, err := repo.CheckAndConsume(ctx, "ada@example.com", domain.ActionShared, domain.DefaultPolicy(), t0)
		if err != nil || !d.Allowed {
			t.Fatalf("check: %+v %v", d, err)
		}
		return context.Canceled
	})

	rec, err := repo.FindByKey(ctx, "ada@example.com", domain.ActionShared)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec != nil {
		t.Fatalf("rolled back transaction should not leave a record, got %+v", rec)
	}
}

func TestRedisStatsRecorder(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	stats := NewRedisStatsRecorder(rdb, "")
	ctx := context.Background()

	_ = stats.Record(ctx, domain.ActionContact, true)
	_ = stats.Record(ctx, domain.ActionContact, false)
	_ = stats.Record(ctx, domain.ActionShared, false)

	totals, err := stats.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals["allowed"] != 1 || totals["denied"] != 2 {
		t.Fatalf("unexpected totals %v", totals)
	}
	if totals["contact:denied"] != 1 || totals["shared:denied"] != 1 {
		t.Fatalf("unexpected per-action totals %v", totals)
	}
}

func TestNoopStatsRecorder(t *testing.T) {
	stats := NewNoopStatsRecorder()
	if err := stats.Record(context.Background(), domain.ActionContact, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	totals, err := stats.Totals(context.Background())
	if err != nil || len(totals) != 0 {
		t.Fatalf("expected empty totals, got %v %v", totals, err)
	}
}
