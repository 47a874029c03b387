package dto

import (
	"improtango-backend/internal/newsletter/domain"
	"improtango-backend/internal/notification"
)

type EmailRequest struct {
	Email string `json:"email"`
}

type SubscribeResponse struct {
	ID            string                  `json:"id"`
	Notifications []notification.Delivery `json:"notifications"`
}

type UnsubscribeResponse struct {
	Success       bool                    `json:"success"`
	Notifications []notification.Delivery `json:"notifications"`
}

// NotificationResult is the non-throwing outcome of a best-effort email.
type NotificationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type SubscribersResponse struct {
	Subscribers []*domain.Subscriber `json:"subscribers"`
	Total       int                  `json:"total"`
}
