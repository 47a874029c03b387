package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tx := NewTransactor(db)
	boom := errors.New("boom")
	err = tx.Transaction(context.Background(), func(ctx context.Context) error {
		if err := Conn(ctx, db).Create(&widget{Name: "a"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int64
	db.Model(&widget{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestTransactor_NestedSavepointKeepsOuterWork(t *testing.T) {
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tx := NewTransactor(db)
	err = tx.Transaction(context.Background(), func(ctx context.Context) error {
		if err := Conn(ctx, db).Create(&widget{Name: "a"}).Error; err != nil {
			return err
		}
		inner := tx.Transaction(ctx, func(ctx context.Context) error {
			return Conn(ctx, db).Create(&widget{Name: "a"}).Error
		})
		if !IsUniqueViolation(inner) {
			t.Errorf("expected unique violation from nested insert, got %v", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("outer transaction: %v", err)
	}

	var n int64
	db.Model(&widget{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestIsUniqueViolation_Nil(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatalf("nil is not a unique violation")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatalf("unrelated errors are not unique violations")
	}
}
