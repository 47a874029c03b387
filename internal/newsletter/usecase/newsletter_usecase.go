package usecase

import (
	"context"
	"log"
	"time"

	"improtango-backend/internal/newsletter/domain"
	"improtango-backend/internal/newsletter/dto"
	"improtango-backend/internal/newsletter/repository"
	"improtango-backend/internal/notification"
	ratelimitdomain "improtango-backend/internal/ratelimit/domain"
	ratelimit "improtango-backend/internal/ratelimit/usecase"
	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/database"
	"improtango-backend/pkg/validation"
)

const (
	stepWelcome     = "newsletter_welcome"
	stepAdmin       = "newsletter_admin"
	stepUnsubscribe = "unsubscribe_admin"
)

type newsletterUsecase struct {
	repo     repository.SubscriberRepository
	tx       database.Transactor
	limiter  ratelimit.Limiter
	notifier Notifier
	now      func() time.Time
}

func NewNewsletterUsecase(repo repository.SubscriberRepository, tx database.Transactor, limiter ratelimit.Limiter, notifier Notifier) NewsletterUsecase {
	return &newsletterUsecase{
		repo:     repo,
		tx:       tx,
		limiter:  limiter,
		notifier: notifier,
		now:      time.Now,
	}
}

func checkedEmail(email string) (string, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.Email(email); err != nil {
		return "", err
	}
	return email, nil
}

func (u *newsletterUsecase) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	email, err := checkedEmail(email)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscriber{Email: email}
	err = u.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := u.repo.FindByEmail(ctx, email)
		if err != nil {
			return apperr.Internal(err)
		}
		if existing != nil {
			return apperr.AlreadySubscribed()
		}

		if err := u.limiter.Enforce(ctx, email, ratelimitdomain.ActionNewsletter); err != nil {
			return err
		}

		sub.SubscribedAt = u.now().UTC()
		if err := u.repo.Create(ctx, sub); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.AlreadySubscribed()
			}
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Newsletter] Subscribed %s (%s)", email, sub.ID)
	return sub, nil
}

func (u *newsletterUsecase) Unsubscribe(ctx context.Context, email string) error {
	email, err := checkedEmail(email)
	if err != nil {
		return err
	}

	err = u.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := u.repo.FindByEmail(ctx, email)
		if err != nil {
			return apperr.Internal(err)
		}
		if existing == nil {
			return apperr.NotFound("email is not subscribed")
		}
		if err := u.repo.Delete(ctx, existing.ID); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Newsletter] Unsubscribed %s", email)
	return nil
}

func (u *newsletterUsecase) CheckSubscription(ctx context.Context, email string) (*domain.SubscriptionStatus, error) {
	email, err := checkedEmail(email)
	if err != nil {
		return nil, err
	}
	existing, err := u.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &domain.SubscriptionStatus{IsSubscribed: existing != nil}, nil
}

func (u *newsletterUsecase) List(ctx context.Context) ([]*domain.Subscriber, error) {
	subs, err := u.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return subs, nil
}

func (u *newsletterUsecase) SendWelcomeEmail(ctx context.Context, email string) error {
	email, err := checkedEmail(email)
	if err != nil {
		return err
	}
	return u.notifier.SendNewsletterWelcome(ctx, email)
}

func (u *newsletterUsecase) SendAdminNotification(ctx context.Context, email string) error {
	email, err := checkedEmail(email)
	if err != nil {
		return err
	}
	return u.notifier.SendNewsletterAdmin(ctx, email)
}

func (u *newsletterUsecase) SendUnsubscribeNotification(ctx context.Context, email string) *dto.NotificationResult {
	email, err := checkedEmail(email)
	if err == nil {
		err = u.notifier.SendUnsubscribeAdmin(ctx, email)
	}
	if err != nil {
		log.Printf("[Newsletter] Unsubscribe notification for %s failed: %v", email, err)
		return &dto.NotificationResult{Success: false, Error: err.Error()}
	}
	return &dto.NotificationResult{Success: true}
}

func (u *newsletterUsecase) SubscribeAndNotify(ctx context.Context, email string) (*dto.SubscribeResponse, error) {
	sub, err := u.Subscribe(ctx, email)
	if err != nil {
		return nil, err
	}

	report := notification.Parallel(ctx,
		notification.Step{Name: stepWelcome, Primary: true, Send: func(ctx context.Context) error {
			return u.notifier.SendNewsletterWelcome(ctx, sub.Email)
		}},
		notification.Step{Name: stepAdmin, Send: func(ctx context.Context) error {
			return u.notifier.SendNewsletterAdmin(ctx, sub.Email)
		}},
	)

	resp := &dto.SubscribeResponse{ID: sub.ID, Notifications: report.Deliveries}
	if err := report.Err(); err != nil {
		return resp, apperr.From(err)
	}
	return resp, nil
}

func (u *newsletterUsecase) UnsubscribeAndNotify(ctx context.Context, email string) (*dto.UnsubscribeResponse, error) {
	if err := u.Unsubscribe(ctx, email); err != nil {
		return nil, err
	}
	email = validation.NormalizeEmail(email)

	report := notification.Sequential(ctx,
		notification.Step{Name: stepUnsubscribe, Send: func(ctx context.Context) error {
			return u.notifier.SendUnsubscribeAdmin(ctx, email)
		}},
	)
	return &dto.UnsubscribeResponse{Success: true, Notifications: report.Deliveries}, nil
}
