// Package apperr defines the tagged errors returned by the site's operations.
// Callers branch on Kind instead of matching message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindAlreadySubscribed Kind = "already_subscribed"
	KindNotFound          Kind = "not_found"
	KindRateLimited       Kind = "rate_limited"
	KindProvider          Kind = "provider"
	KindConfiguration     Kind = "configuration"
	KindInternal          Kind = "internal"
)

type Error struct {
	Kind Kind
	// Field names the offending input for KindInvalidInput.
	Field string
	// RetryAfterSeconds is set for KindRateLimited.
	RetryAfterSeconds int
	Message           string
	Err               error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidInput(field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: message}
}

func AlreadySubscribed() *Error {
	return &Error{Kind: KindAlreadySubscribed, Message: "email already subscribed"}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func RateLimited(retryAfterSeconds int) *Error {
	return &Error{
		Kind:              KindRateLimited,
		RetryAfterSeconds: retryAfterSeconds,
		Message:           fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfterSeconds),
	}
}

func Provider(message string, err error) *Error {
	return &Error{Kind: KindProvider, Message: message, Err: err}
}

func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From returns err as an *Error, wrapping unknown errors as KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindAlreadySubscribed:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
