package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/config"
	"improtango-backend/pkg/mailer"
)

const (
	SubjectContactConfirmation = "Kiitos yhteydenotostasi - Improtango"
	SubjectNewsletterWelcome   = "Tervetuloa Improtangon uutiskirjeelle"
	SubjectNewsletterAdmin     = "Uusi uutiskirjeen tilaus - Improtango"
	SubjectUnsubscribeAdmin    = "Uutiskirjeen tilaus peruutettu - Improtango"
	contactAdminSubjectPrefix  = "Yhteydenotto: "
)

// ContactAdminSubject is the subject of the admin copy of a contact message.
func ContactAdminSubject(subject string) string {
	return contactAdminSubjectPrefix + subject
}

// ContactMessage is the contact form content forwarded to the admins.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service renders and sends the site's notification emails.
type Service struct {
	sender   mailer.Sender
	cfg      config.EmailConfig
	pages    *renderer
	location *time.Location
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(sender mailer.Sender, cfg config.EmailConfig, opts ...Option) (*Service, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		loc = time.UTC
	}

	s := &Service{
		sender:   sender,
		cfg:      cfg,
		pages:    pages,
		location: loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CheckConfig reports missing provider settings as a configuration error.
func (s *Service) CheckConfig() error {
	if missing := s.cfg.MissingEmailSettings(); len(missing) > 0 {
		log.Printf("[Notification] Missing email settings: %s", strings.Join(missing, ", "))
		return apperr.Configuration("missing email settings: " + strings.Join(missing, ", "))
	}
	return nil
}

func (s *Service) adminRecipients() ([]string, []string) {
	var cc []string
	if s.cfg.AdminCC != "" {
		cc = []string{s.cfg.AdminCC}
	}
	return []string{s.cfg.AdminTo}, cc
}

func (s *Service) timestamp() string {
	return s.now().In(s.location).Format("2.1.2006 klo 15.04.05")
}

func (s *Service) send(ctx context.Context, msg *mailer.Message) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		var perr *mailer.ProviderError
		if errors.As(err, &perr) {
			return apperr.Provider(fmt.Sprintf("email provider rejected %q", msg.Subject), err)
		}
		return apperr.Provider(fmt.Sprintf("failed to send %q", msg.Subject), err)
	}
	log.Printf("[Notification] Sent %q to %v", msg.Subject, msg.To)
	return nil
}

func (s *Service) sendAdmin(ctx context.Context, subject string, notice adminNotice) error {
	if s.cfg.AdminTo == "" {
		return apperr.Configuration("ADMIN_EMAIL is not set")
	}
	body, err := s.pages.render(pageAdminNotice, notice)
	if err != nil {
		return apperr.Internal(err)
	}
	to, cc := s.adminRecipients()
	return s.send(ctx, &mailer.Message{From: s.cfg.From, To: to, CC: cc, Subject: subject, HTML: body})
}

// SendContactAdmin forwards a contact message to the admins.
func (s *Service) SendContactAdmin(ctx context.Context, m ContactMessage) error {
	return s.sendAdmin(ctx, ContactAdminSubject(m.Subject), adminNotice{
		Color:   "#14b8a6",
		Heading: "Uusi yhteydenotto verkkosivuilta",
		Lead:    "Verkkosivujen yhteydenottolomakkeella on lähetetty viesti.",
		Fields: []noticeField{
			field("Nimi", m.Name),
			field("Sähköposti", m.Email),
			field("Aihe", m.Subject),
			field("Viesti", m.Message),
			field("Vastaanotettu", s.timestamp()),
		},
	})
}

// SendContactConfirmation thanks the sender of a contact message.
func (s *Service) SendContactConfirmation(ctx context.Context, name, email string) error {
	body, err := s.pages.render(pageContactConfirmation, brandedPage{
		Title:    "Kiitos yhteydenotosta",
		Heading:  fmt.Sprintf("Kiitos yhteydenotostasi, %s!", name),
		Copy:     s.pages.copy["contact_confirmation"],
		Greeting: "Lämpimin terveisin",
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return s.send(ctx, &mailer.Message{
		From:    s.cfg.From,
		To:      []string{email},
		Subject: SubjectContactConfirmation,
		HTML:    body,
	})
}

// UnsubscribeURL is the link included in every newsletter email.
func (s *Service) UnsubscribeURL(email string) string {
	base := strings.TrimRight(s.cfg.SiteURL, "/")
	if email == "" {
		return base + "/unsubscribe"
	}
	return base + "/unsubscribe?email=" + url.QueryEscape(email)
}

func (s *Service) SendNewsletterWelcome(ctx context.Context, email string) error {
	body, err := s.pages.render(pageNewsletterWelcome, brandedPage{
		Title:          SubjectNewsletterWelcome,
		Heading:        "Tervetuloa mukaan!",
		Copy:           s.pages.copy["newsletter_welcome"],
		Greeting:       "Nähdään tanssissa",
		UnsubscribeURL: s.UnsubscribeURL(email),
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return s.send(ctx, &mailer.Message{
		From:    s.cfg.From,
		To:      []string{email},
		Subject: SubjectNewsletterWelcome,
		HTML:    body,
	})
}

func (s *Service) SendNewsletterAdmin(ctx context.Context, email string) error {
	return s.sendAdmin(ctx, SubjectNewsletterAdmin, adminNotice{
		Color:   "#14b8a6",
		Heading: "Uusi uutiskirjeen tilaus",
		Lead:    "Joku on tilannut Improtangon uutiskirjeen verkkosivuilla.",
		Fields: []noticeField{
			field("Sähköpostiosoite", email),
			field("Tilausaika", s.timestamp()),
		},
		Note: "Voit tarkastella kaikkia tilauksia admin-paneelissa.",
	})
}

func (s *Service) SendUnsubscribeAdmin(ctx context.Context, email string) error {
	return s.sendAdmin(ctx, SubjectUnsubscribeAdmin, adminNotice{
		Color:   "#ef4444",
		Heading: "Uutiskirjeen tilaus peruutettu",
		Lead:    "Joku on peruuttanut uutiskirjeen tilauksen.",
		Fields: []noticeField{
			field("Sähköpostiosoite", email),
			field("Peruutusaika", s.timestamp()),
		},
		Note: "Tilaaja on poistettu automaattisesti tietokannasta.",
	})
}
