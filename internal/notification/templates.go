package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.html templates/copy/*.md
var templateFS embed.FS

const (
	pageContactConfirmation = "contact_confirmation.html"
	pageNewsletterWelcome   = "newsletter_welcome.html"
	pageAdminNotice         = "admin_notice.html"
)

// brandedPage is the data for the customer-facing layout.
type brandedPage struct {
	Title          string
	Heading        string
	Copy           template.HTML
	Greeting       string
	UnsubscribeURL string
}

type noticeField struct {
	Label string
	Lines []string
}

// adminNotice is the data for the plain admin layout. Every value is
// escaped on render.
type adminNotice struct {
	Color   string
	Heading string
	Lead    string
	Fields  []noticeField
	Note    string
}

func field(label, value string) noticeField {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return noticeField{Label: label, Lines: strings.Split(value, "\n")}
}

type renderer struct {
	pages map[string]*template.Template
	copy  map[string]template.HTML
}

func newRenderer() (*renderer, error) {
	r := &renderer{
		pages: make(map[string]*template.Template),
		copy:  make(map[string]template.HTML),
	}

	for _, page := range []string{pageContactConfirmation, pageNewsletterWelcome, pageAdminNotice} {
		t, err := template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}

	md := goldmark.New()
	for _, name := range []string{"contact_confirmation", "newsletter_welcome"} {
		src, err := templateFS.ReadFile("templates/copy/" + name + ".md")
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("render copy %s: %w", name, err)
		}
		// authored in this repository, never user input
		r.copy[name] = template.HTML(buf.String())
	}
	return r, nil
}

func (r *renderer) render(page string, data interface{}) (string, error) {
	t, ok := r.pages[page]
	if !ok {
		return "", fmt.Errorf("unknown template %s", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, page, data); err != nil {
		return "", fmt.Errorf("render %s: %w", page, err)
	}
	return buf.String(), nil
}
