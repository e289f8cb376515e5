package apierr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind is the outcome class a failed request maps to. The transport layer
// owns the mapping to status codes; everything below it only reports which
// of the four occurred.
type Kind int

const (
	KindBackend Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
)

type Error struct {
	Kind Kind
	Code string
	Err  error

	// FieldErrors carries every invalid input field for KindValidation.
	FieldErrors map[string][]string

	// Timeout marks a backend failure caused by the request deadline.
	Timeout bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.FieldErrors) > 0 {
		keys := make([]string, 0, len(e.FieldErrors))
		for k := range e.FieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.FieldErrors[k], "; ")))
		}
		return "invalid request: " + strings.Join(parts, ", ")
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Validation(fieldErrors map[string][]string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_request", FieldErrors: fieldErrors}
}

func NotFound(code string, err error) *Error {
	return &Error{Kind: KindNotFound, Code: code, Err: err}
}

func Forbidden(code string, err error) *Error {
	return &Error{Kind: KindForbidden, Code: code, Err: err}
}

func Backend(code string, err error) *Error {
	return &Error{Kind: KindBackend, Code: code, Err: err}
}

func BackendTimeout(err error) *Error {
	return &Error{Kind: KindBackend, Code: "backend_timeout", Err: err, Timeout: true}
}

// AsError unwraps err to an *Error, or wraps it as an opaque backend error.
func AsError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Backend("internal_error", err)
}
