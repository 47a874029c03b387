package usecase

import (
	"context"
	"log"

	"improtango-backend/internal/contact/domain"
	"improtango-backend/internal/contact/dto"
	"improtango-backend/internal/contact/repository"
	"improtango-backend/internal/notification"
	ratelimitdomain "improtango-backend/internal/ratelimit/domain"
	ratelimit "improtango-backend/internal/ratelimit/usecase"
	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/database"
	"improtango-backend/pkg/validation"
)

const (
	stepAdmin        = "contact_admin"
	stepConfirmation = "contact_confirmation"

	maxPageSize = 200
)

type contactUsecase struct {
	repo     repository.SubmissionRepository
	tx       database.Transactor
	limiter  ratelimit.Limiter
	notifier Notifier
}

func NewContactUsecase(repo repository.SubmissionRepository, tx database.Transactor, limiter ratelimit.Limiter, notifier Notifier) ContactUsecase {
	return &contactUsecase{
		repo:     repo,
		tx:       tx,
		limiter:  limiter,
		notifier: notifier,
	}
}

func (u *contactUsecase) SendContactMessage(ctx context.Context, req dto.ContactRequest) (*dto.ContactResponse, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	preview := req.Message
	if r := []rune(preview); len(r) > 50 {
		preview = string(r[:50]) + "..."
	}
	log.Printf("[Contact] Submission from %s <%s>: %q %q", req.Name, req.Email, req.Subject, preview)

	sub := &domain.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Status:  domain.StatusPending,
	}

	// checked before the limiter so a misconfigured service never consumes a slot
	if err := u.notifier.CheckConfig(); err != nil {
		return nil, err
	}

	err := u.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := u.limiter.Enforce(ctx, req.Email, ratelimitdomain.ActionContact); err != nil {
			return err
		}
		if err := u.repo.Create(ctx, sub); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := notification.Sequential(ctx,
		notification.Step{Name: stepAdmin, Primary: true, Send: func(ctx context.Context) error {
			return u.notifier.SendContactAdmin(ctx, notification.ContactMessage{
				Name:    req.Name,
				Email:   req.Email,
				Subject: req.Subject,
				Message: req.Message,
			})
		}},
		notification.Step{Name: stepConfirmation, Send: func(ctx context.Context) error {
			return u.notifier.SendContactConfirmation(ctx, req.Name, req.Email)
		}},
	)

	status := domain.StatusDelivered
	if report.Err() != nil {
		status = domain.StatusFailed
	}
	if err := u.repo.UpdateStatus(ctx, sub.ID, status); err != nil {
		log.Printf("[Contact] Failed to mark submission %s %s: %v", sub.ID, status, err)
	}

	if err := report.Err(); err != nil {
		return nil, apperr.From(err)
	}

	log.Printf("[Contact] Submission %s delivered", sub.ID)
	return &dto.ContactResponse{Success: true, ID: sub.ID, Notifications: report.Deliveries}, nil
}

func (u *contactUsecase) ListSubmissions(ctx context.Context, status string, limit, offset int) ([]*domain.Submission, int64, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var statusPtr *domain.SubmissionStatus
	switch s := domain.SubmissionStatus(status); s {
	case "":
	case domain.StatusPending, domain.StatusDelivered, domain.StatusFailed:
		statusPtr = &s
	default:
		return nil, 0, apperr.InvalidInput("status", "unknown submission status")
	}

	subs, total, err := u.repo.List(ctx, statusPtr, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return subs, total, nil
}
