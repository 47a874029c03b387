package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"improtango-backend/internal/ratelimit/domain"
	"improtango-backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRateLimitRepository struct {
	db *gorm.DB
}

// NewGormRateLimitRepository stores counters in the rate_limits table. When
// ctx carries a transaction the check joins it.
func NewGormRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &gormRateLimitRepository{db: db}
}

func (r *gormRateLimitRepository) find(tx *gorm.DB, email string, action domain.Action) (*domain.RateLimit, error) {
	var rec domain.RateLimit
	err := database.ForUpdate(tx).
		Where("email = ? AND action = ?", email, string(action)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *gormRateLimitRepository) FindByKey(ctx context.Context, email string, action domain.Action) (*domain.RateLimit, error) {
	var rec domain.RateLimit
	err := database.Conn(ctx, r.db).
		Where("email = ? AND action = ?", email, string(action)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *gormRateLimitRepository) CheckAndConsume(ctx context.Context, email string, action domain.Action, policy domain.Policy, now time.Time) (domain.Decision, error) {
	var decision domain.Decision

	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		rec, err := r.find(tx, email, action)
		if err != nil {
			return err
		}

		if rec == nil {
			fresh, d := policy.Apply(nil, now)
			fresh.ID = uuid.New().String()
			fresh.Email = email
			fresh.Action = string(action)

			// savepoint so a lost insert race leaves the outer tx usable
			err := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(fresh).Error
			})
			if err == nil {
				decision = d
				return nil
			}
			if !database.IsUniqueViolation(err) {
				return err
			}

			rec, err = r.find(tx, email, action)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("rate limit record for %s vanished after conflict", email)
			}
		}

		updated, d := policy.Apply(rec, now)
		decision = d
		if !d.Allowed {
			return nil
		}
		return tx.Save(updated).Error
	})
	if err != nil {
		return domain.Decision{}, err
	}
	return decision, nil
}
