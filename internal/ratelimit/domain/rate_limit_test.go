package domain

import (
	"testing"
	"time"
)

func TestPolicyApply(t *testing.T) {
	p := DefaultPolicy()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rec, d := p.Apply(nil, t0)
	if !d.Allowed || rec.Count != 1 || !rec.WindowStart.Equal(t0) {
		t.Fatalf("first request: got %+v %+v", d, rec)
	}

	rec, d = p.Apply(rec, t0.Add(10*time.Minute))
	if d.Allowed {
		t.Fatalf("second request inside window should be denied")
	}
	if d.RetryAfterSeconds != 3000 {
		t.Fatalf("expected 3000s retry, got %d", d.RetryAfterSeconds)
	}
	if rec.Count != 1 {
		t.Fatalf("denied request must not change count, got %d", rec.Count)
	}

	// exactly one window later is still inside it
	_, d = p.Apply(rec, t0.Add(time.Hour))
	if d.Allowed || d.RetryAfterSeconds != 1 {
		t.Fatalf("boundary: expected denial with 1s retry, got %+v", d)
	}

	later := t0.Add(time.Hour + time.Second)
	rec, d = p.Apply(rec, later)
	if !d.Allowed || rec.Count != 1 || !rec.WindowStart.Equal(later) {
		t.Fatalf("expired window should reset: %+v %+v", d, rec)
	}
}

func TestPolicyApply_IncrementsBelowMax(t *testing.T) {
	p := Policy{Window: time.Minute, Max: 3}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var rec *RateLimit
	var d Decision
	for i := 1; i <= 3; i++ {
		rec, d = p.Apply(rec, now.Add(time.Duration(i)*time.Second))
		if !d.Allowed || rec.Count != i {
			t.Fatalf("request %d: %+v count=%d", i, d, rec.Count)
		}
	}
	_, d = p.Apply(rec, now.Add(4*time.Second))
	if d.Allowed {
		t.Fatalf("fourth request should be denied")
	}
	if d.RetryAfterSeconds != 57 {
		t.Fatalf("expected 57s retry, got %d", d.RetryAfterSeconds)
	}
}

func TestRetryAfterRoundsUp(t *testing.T) {
	p := DefaultPolicy()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := p.RetryAfter(start, start.Add(time.Hour-1500*time.Millisecond)); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
