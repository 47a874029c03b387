package domain

import "time"

type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusDelivered SubmissionStatus = "delivered"
	StatusFailed    SubmissionStatus = "failed"
)

// Submission is a contact form message kept as an audit trail of what was
// forwarded to the admins.
type Submission struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	Name      string           `json:"name" gorm:"not null;size:100"`
	Email     string           `json:"email" gorm:"not null;size:254;index"`
	Subject   string           `json:"subject" gorm:"not null;size:200"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	Status    SubmissionStatus `json:"status" gorm:"not null;default:pending"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Submission) TableName() string {
	return "contact_submissions"
}
