package repository

import (
	"context"

	"improtango-backend/internal/newsletter/domain"
)

// SubscriberRepository defines data access for newsletter subscribers. All
// methods join the transaction carried by ctx, if any.
type SubscriberRepository interface {
	// Create inserts a subscriber. A duplicate email fails with a unique
	// violation.
	Create(ctx context.Context, s *domain.Subscriber) error

	// FindByEmail returns nil when no subscriber has the email.
	FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error)

	Delete(ctx context.Context, id string) error

	// List returns every subscriber, newest first.
	List(ctx context.Context) ([]*domain.Subscriber, error)

	Count(ctx context.Context) (int64, error)
}
