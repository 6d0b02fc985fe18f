package fault

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an engine failure so HTTP handlers can map it to a stable
// status code and the frontend can render a specific message.
type Kind string

const (
	KindConfig     Kind = "config"     // required credential not configured
	KindAuth       Kind = "auth"       // backend rejected the credential
	KindQuota      Kind = "quota"      // backend rate/usage limit reached
	KindNotFound   Kind = "not_found"  // unknown persona
	KindGeneration Kind = "generation" // generic completion backend failure
	KindValidation Kind = "validation" // missing or invalid request field
)

// Error carries a classification alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification from err, defaulting to generation.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindGeneration
}

// HTTPStatus maps a classification to the status code the original API
// contract exposes for it.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindQuota:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ClassifyBackend inspects a completion/speech backend error and assigns the
// auth/quota/generic classification. Backends report failures as opaque error
// strings, so this matches the markers the providers actually emit.
func ClassifyBackend(err error) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "invalid_api_key", "invalid api key", "incorrect api key", "authenticationerror", "401", "unauthorized"):
		return Wrap(KindAuth, "backend rejected the configured credential", err)
	case containsAny(msg, "insufficient_quota", "quota", "rate limit", "ratelimiterror", "429", "too many requests"):
		return Wrap(KindQuota, "backend quota exhausted", err)
	default:
		return Wrap(KindGeneration, "completion backend failure", err)
	}
}

func containsAny(s string, markers ...string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
