package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"improtango-backend/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

const MaxEmailLength = 254

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// NormalizeEmail trims and lower-cases an address so one mailbox maps to one
// record.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email checks a single address.
func Email(email string) error {
	if email == "" {
		return apperr.InvalidInput("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return apperr.InvalidInput("email", "email must be at most 254 characters")
	}
	if err := instance().Var(email, "email"); err != nil {
		return apperr.InvalidInput("email", apperr.MsgEmailInvalid)
	}
	return nil
}

// Struct validates s against its `validate` tags and reports the first
// failing field as an invalid-input error named after its json tag.
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal(err)
	}
	fe := verrs[0]
	if fe.Field() == "email" && fe.Tag() == "email" {
		return apperr.InvalidInput("email", apperr.MsgEmailInvalid)
	}
	return apperr.InvalidInput(fe.Field(), fe.Field()+" failed "+fe.Tag()+" validation")
}
