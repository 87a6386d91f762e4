// Package apperrors defines the client-side error taxonomy shared by the
// session, conversation, and transport layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind represents the category of error
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNetwork      Kind = "NETWORK"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindServer       Kind = "SERVER"
	KindParsing      Kind = "PARSING"
	KindStorage      Kind = "STORAGE"
	KindInternal     Kind = "INTERNAL"
)

// Layer represents the application layer where the error occurred
type Layer string

const (
	LayerDomain    Layer = "domain"
	LayerTransport Layer = "transport"
	LayerStorage   Layer = "storage"
	LayerCLI       Layer = "cli"
)

// Error carries the category, the originating layer, and any server-provided
// detail text alongside the wrapped cause.
type Error struct {
	Kind       Kind
	Layer      Layer
	Message    string
	Detail     string // server-provided detail text, when decodable
	StatusCode int    // HTTP status, 0 for local errors
	Err        error
	Timestamp  time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Kind, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given layer, kind, and message.
func New(layer Layer, kind Kind, message string, err error) *Error {
	return &Error{
		Kind:      kind,
		Layer:     layer,
		Message:   message,
		Err:       err,
		Timestamp: time.Now().UTC(),
	}
}

// Validation is shorthand for a local validation failure. No request has been
// made when one of these is returned.
func Validation(layer Layer, message string) *Error {
	return New(layer, KindValidation, message, nil)
}

// FromStatus maps an HTTP response status to the taxonomy. detail is the
// server-provided text, if any; it is kept verbatim for the caller to surface.
func FromStatus(layer Layer, status int, detail string) *Error {
	e := &Error{
		Layer:      layer,
		Detail:     detail,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
	}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		e.Message = "authentication rejected"
	case status >= 400:
		e.Kind = KindServer
		e.Message = fmt.Sprintf("server returned %d", status)
	default:
		e.Kind = KindInternal
		e.Message = fmt.Sprintf("unexpected status %d", status)
	}
	return e
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// DetailOf returns the server-provided detail text of err, or the empty string.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}
