// Package mailer holds the transport-neutral email message and the Sender
// interface implemented by the Resend and SMTP transports.
package mailer

import (
	"context"
	"fmt"
)

type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender delivers one message in a single attempt.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// ProviderError is returned when the provider answered with a non-success
// status.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("email provider returned %d: %s", e.StatusCode, e.Body)
}

func (m *Message) Validate() error {
	if m.From == "" {
		return fmt.Errorf("message has no sender")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("message has no recipient")
	}
	if m.Subject == "" {
		return fmt.Errorf("message has no subject")
	}
	if m.HTML == "" {
		return fmt.Errorf("message has no content")
	}
	return nil
}
