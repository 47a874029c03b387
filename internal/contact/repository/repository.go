package repository

import (
	"context"

	"improtango-backend/internal/contact/domain"
)

// SubmissionRepository defines data access for contact submissions
type SubmissionRepository interface {
	Create(ctx context.Context, s *domain.Submission) error

	UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) error

	// FindByID returns nil when the submission does not exist.
	FindByID(ctx context.Context, id string) (*domain.Submission, error)

	// List returns a page of submissions, newest first, with an optional
	// status filter, plus the total matching count.
	List(ctx context.Context, status *domain.SubmissionStatus, limit, offset int) ([]*domain.Submission, int64, error)
}
