package api

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is shown to users for any transport failure.
const GenericFailureMessage = "Could not reach the server. Try again later."

// TransportError reports that no usable response envelope was received:
// the request could not be sent, the server answered with a non-2xx
// status, or the body was not a valid envelope.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (%d): %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err (or any error in its chain) is a
// TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusError is a business failure: the server answered with an envelope
// whose status is not 0. Message is the server's text, shown verbatim.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request (status %d)", e.Status)
	}
	return fmt.Sprintf("server rejected request (status %d): %s", e.Status, e.Message)
}

// IsStatus reports whether err (or any error in its chain) is a StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// Check converts an envelope status into an error. It returns nil for
// status 0.
func Check(status int, message string) error {
	if status == 0 {
		return nil
	}
	return &StatusError{Status: status, Message: message}
}

// ValidationError is a problem with user input caught before any request
// is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UserMessage returns the text shown next to the form.
func (e *ValidationError) UserMessage() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// displayable is implemented by errors that carry text meant for users.
type displayable interface {
	UserMessage() string
}

// UserMessage turns any error from a user action into the text to show.
// Server messages are passed through verbatim; transport problems get a
// generic message; errors implementing UserMessage() speak for themselves.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var d displayable
	if errors.As(err, &d) {
		return d.UserMessage()
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return "The server rejected the request."
	}

	return GenericFailureMessage
}
