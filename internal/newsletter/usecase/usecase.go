package usecase

import (
	"context"

	"improtango-backend/internal/newsletter/domain"
	"improtango-backend/internal/newsletter/dto"
)

// NewsletterUsecase defines the newsletter operations.
type NewsletterUsecase interface {
	// Subscribe adds email to the list. It fails with already_subscribed,
	// rate_limited or invalid_input before anything is written.
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)

	// Unsubscribe removes email, or fails with not_found.
	Unsubscribe(ctx context.Context, email string) error

	CheckSubscription(ctx context.Context, email string) (*domain.SubscriptionStatus, error)
	List(ctx context.Context) ([]*domain.Subscriber, error)

	SendWelcomeEmail(ctx context.Context, email string) error
	SendAdminNotification(ctx context.Context, email string) error

	// SendUnsubscribeNotification never returns an error; failures are
	// reported in the result.
	SendUnsubscribeNotification(ctx context.Context, email string) *dto.NotificationResult

	// SubscribeAndNotify subscribes and then sends the welcome and admin
	// emails in parallel. A failed welcome email fails the call although the
	// subscription stays committed; the response is returned either way.
	SubscribeAndNotify(ctx context.Context, email string) (*dto.SubscribeResponse, error)

	// UnsubscribeAndNotify unsubscribes and then sends the admin notice on a
	// best-effort basis.
	UnsubscribeAndNotify(ctx context.Context, email string) (*dto.UnsubscribeResponse, error)
}

// Notifier sends the newsletter emails.
type Notifier interface {
	SendNewsletterWelcome(ctx context.Context, email string) error
	SendNewsletterAdmin(ctx context.Context, email string) error
	SendUnsubscribeAdmin(ctx context.Context, email string) error
}
