package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	// KindTransport covers network and runtime failures reaching the backend.
	KindTransport Kind = "transport"
	// KindBackend is a logical failure reported by the backend (success:false).
	KindBackend    Kind = "backend"
	KindValidation Kind = "validation"
	KindBadRequest Kind = "bad_request"
	KindBusy       Kind = "busy"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for status messages and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindTransport:
		return "Could not reach the translation service. Please try again."
	case KindBackend:
		return "The translation service reported an error."
	case KindValidation:
		return "The translation service returned an unexpected response."
	case KindBadRequest:
		return "The request was rejected."
	case KindBusy:
		return "Another operation is still running."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Transport(err error) error {
	return New(KindTransport, "", err)
}

// Backend wraps a message reported by the backend. The message is surfaced
// verbatim.
func Backend(message string) error {
	msg := strings.TrimSpace(message)
	return New(KindBackend, msg, errors.New("backend: "+msg))
}

func Validation(err error) error {
	return New(KindValidation, "", err)
}

func BadRequest(message string) error {
	return New(KindBadRequest, message, nil)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

func IsBackend(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindBackend
}

func IsTransport(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTransport
}
