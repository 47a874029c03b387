// Package testutil provides the database, redis and mail doubles shared by
// package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	contactdomain "improtango-backend/internal/contact/domain"
	newsletterdomain "improtango-backend/internal/newsletter/domain"
	ratelimitdomain "improtango-backend/internal/ratelimit/domain"
	"improtango-backend/pkg/database"
	"improtango-backend/pkg/mailer"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := db.AutoMigrate(
		&newsletterdomain.Subscriber{},
		&ratelimitdomain.RateLimit{},
		&contactdomain.Submission{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// NewRedis starts an in-process redis and returns a client for it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// FakeSender records messages and fails those whose subject is listed in
// FailSubjects.
type FakeSender struct {
	mu           sync.Mutex
	Sent         []mailer.Message
	FailSubjects map[string]error
}

func NewFakeSender() *FakeSender {
	return &FakeSender{FailSubjects: map[string]error{}}
}

func (f *FakeSender) Send(_ context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FailSubjects[msg.Subject]; ok {
		return err
	}
	f.Sent = append(f.Sent, *msg)
	return nil
}

// FailOn makes every message with subject fail with err.
func (f *FakeSender) FailOn(subject string, err error) {
	f.mu.Lock()
	f.FailSubjects[subject] = err
	f.mu.Unlock()
}

func (f *FakeSender) Messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.Sent))
	copy(out, f.Sent)
	return out
}

// BySubject returns the first recorded message with subject, or nil.
func (f *FakeSender) BySubject(subject string) *mailer.Message {
	for _, m := range f.Messages() {
		if m.Subject == subject {
			m := m
			return &m
		}
	}
	return nil
}
