package smtp

import (
	"context"
	"fmt"
	"log"
	"time"

	"improtango-backend/pkg/mailer"

	"github.com/wneessen/go-mail"
)

// Sender delivers messages through an SMTP relay. It is the alternative
// transport to the Resend API.
type Sender struct {
	host     string
	port     int
	user     string
	password string
	timeout  time.Duration
}

func NewSender(host string, port int, user, password string, timeout time.Duration) *Sender {
	if port == 0 {
		port = 587
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{host: host, port: port, user: user, password: password, timeout: timeout}
}

func (s *Sender) buildMessage(m *mailer.Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("failed to set from: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}
	if len(m.CC) > 0 {
		if err := msg.Cc(m.CC...); err != nil {
			return nil, fmt.Errorf("failed to set cc: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, m *mailer.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}

	msg, err := s.buildMessage(m)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(s.timeout),
	}
	if s.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.password),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("[SMTP] %q sent to %v via %s", m.Subject, m.To, s.host)
	return nil
}
