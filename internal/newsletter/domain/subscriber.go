package domain

import "time"

// Subscriber is one newsletter recipient. Email is stored normalized.
type Subscriber struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null;size:254"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"not null;index"`
}

func (Subscriber) TableName() string {
	return "newsletter_subscribers"
}

type SubscriptionStatus struct {
	IsSubscribed bool `json:"isSubscribed"`
}
