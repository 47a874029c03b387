package apperr

import (
	"fmt"
	"strings"
)

// Flow selects the wording for kinds whose message depends on the form the
// user submitted.
type Flow string

const (
	FlowNewsletter  Flow = "newsletter"
	FlowUnsubscribe Flow = "unsubscribe"
	FlowContact     Flow = "contact"
)

type Lang string

const (
	LangFI Lang = "fi"
	LangEN Lang = "en"
)

type catalog struct {
	alreadySubscribed string
	notFound          string
	rateLimit         map[Flow]string // takes minutes
	fields            map[string]string
	emailInvalid      string
	general           map[Flow]string
	configuration     string
}

var catalogs = map[Lang]catalog{
	LangFI: {
		alreadySubscribed: "Tämä sähköpostiosoite on jo tilattu uutiskirjeelle.",
		notFound:          "Sähköpostiosoitetta ei löytynyt uutiskirjeen tilaajista.",
		rateLimit: map[Flow]string{
			FlowNewsletter:  "Olet jo lähettänyt uutiskirjetilauksen. Voit yrittää uudelleen %d minuutin kuluttua.",
			FlowContact:     "Olet jo lähettänyt yhteydenottolomakkeen. Voit yrittää uudelleen %d minuutin kuluttua.",
			FlowUnsubscribe: "Liian monta pyyntöä. Voit yrittää uudelleen %d minuutin kuluttua.",
		},
		fields: map[string]string{
			"email":   "Sähköpostiosoite on pakollinen",
			"name":    "Nimi on pakollinen ja saa olla enintään 100 merkkiä",
			"subject": "Aihe on pakollinen ja saa olla enintään 200 merkkiä",
			"message": "Viesti on pakollinen ja saa olla enintään 5000 merkkiä",
		},
		emailInvalid: "Virheellinen sähköpostiosoite",
		general: map[Flow]string{
			FlowNewsletter:  "Uutiskirjeen tilaaminen epäonnistui. Yritä myöhemmin uudelleen.",
			FlowUnsubscribe: "Tilauksen peruuttaminen epäonnistui. Yritä myöhemmin uudelleen.",
			FlowContact:     "Viestin lähettäminen epäonnistui. Yritä myöhemmin uudelleen.",
		},
		configuration: "Palvelussa on tilapäinen häiriö. Yritä myöhemmin uudelleen.",
	},
	LangEN: {
		alreadySubscribed: "This email address is already subscribed to the newsletter.",
		notFound:          "This email address was not found among the newsletter subscribers.",
		rateLimit: map[Flow]string{
			FlowNewsletter:  "You have already submitted a newsletter subscription. You can try again in %d minutes.",
			FlowContact:     "You have already submitted a contact form. You can try again in %d minutes.",
			FlowUnsubscribe: "Too many requests. You can try again in %d minutes.",
		},
		fields: map[string]string{
			"email":   "Email address is required",
			"name":    "Name is required and must be less than 100 characters",
			"subject": "Subject is required and must be less than 200 characters",
			"message": "Message is required and must be less than 5000 characters",
		},
		emailInvalid: "Invalid email address",
		general: map[Flow]string{
			FlowNewsletter:  "Newsletter subscription failed. Please try again later.",
			FlowUnsubscribe: "Unsubscribing failed. Please try again later.",
			FlowContact:     "Sending the message failed. Please try again later.",
		},
		configuration: "The service is temporarily unavailable. Please try again later.",
	},
}

// ParseLang picks a supported language from a query value or an
// Accept-Language header. Finnish is the default.
func ParseLang(values ...string) Lang {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
			switch {
			case strings.HasPrefix(tag, "en"):
				return LangEN
			case strings.HasPrefix(tag, "fi"):
				return LangFI
			}
		}
	}
	return LangFI
}

// RetryAfterMinutes rounds a retry-after duration up to whole minutes.
func RetryAfterMinutes(seconds int) int {
	if seconds <= 0 {
		return 1
	}
	return (seconds + 59) / 60
}

// Localize returns the user-facing message for err in lang.
func Localize(err error, lang Lang, flow Flow) string {
	c, ok := catalogs[lang]
	if !ok {
		c = catalogs[LangFI]
	}
	e := From(err)
	switch e.Kind {
	case KindInvalidInput:
		if e.Field == "email" && e.Message == MsgEmailInvalid {
			return c.emailInvalid
		}
		if msg, ok := c.fields[e.Field]; ok {
			return msg
		}
		return c.emailInvalid
	case KindAlreadySubscribed:
		return c.alreadySubscribed
	case KindNotFound:
		return c.notFound
	case KindRateLimited:
		tmpl, ok := c.rateLimit[flow]
		if !ok {
			tmpl = c.rateLimit[FlowContact]
		}
		return fmt.Sprintf(tmpl, RetryAfterMinutes(e.RetryAfterSeconds))
	case KindConfiguration:
		return c.configuration
	default:
		if msg, ok := c.general[flow]; ok {
			return msg
		}
		return c.general[FlowContact]
	}
}

// MsgEmailInvalid marks an email that is present but malformed, as opposed
// to missing.
const MsgEmailInvalid = "invalid email address"
