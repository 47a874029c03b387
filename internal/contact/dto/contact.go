package dto

import (
	"strings"

	"improtango-backend/internal/contact/domain"
	"improtango-backend/internal/notification"
	"improtango-backend/pkg/validation"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Normalize trims every field and lower-cases the email.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = validation.NormalizeEmail(r.Email)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

type ContactResponse struct {
	Success       bool                    `json:"success"`
	ID            string                  `json:"id"`
	Notifications []notification.Delivery `json:"notifications"`
}

type SubmissionsResponse struct {
	Submissions []*domain.Submission `json:"submissions"`
	Total       int64                `json:"total"`
}
