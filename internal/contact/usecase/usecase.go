package usecase

import (
	"context"

	"improtango-backend/internal/contact/domain"
	"improtango-backend/internal/contact/dto"
	"improtango-backend/internal/notification"
)

// ContactUsecase defines the contact form operations
type ContactUsecase interface {
	// SendContactMessage validates, rate-limits and records a submission,
	// then forwards it to the admins and confirms it to the sender.
	SendContactMessage(ctx context.Context, req dto.ContactRequest) (*dto.ContactResponse, error)

	ListSubmissions(ctx context.Context, status string, limit, offset int) ([]*domain.Submission, int64, error)
}

// Notifier sends the contact emails.
type Notifier interface {
	CheckConfig() error
	SendContactAdmin(ctx context.Context, m notification.ContactMessage) error
	SendContactConfirmation(ctx context.Context, name, email string) error
}
