package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a client error.
type Kind int

const (
	// KindNetwork is a timeout or transport failure.
	KindNetwork Kind = iota + 1
	// KindHTTP is a non-2xx response other than the cases below.
	KindHTTP
	// KindValidation is a 400 or 422 response.
	KindValidation
	// KindNotFound is a 404 response: a well-formed "no such record" answer,
	// distinct from a transport failure.
	KindNotFound
)

// Error is a classified failure from the remote camp API.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("camp api: %s (HTTP %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("camp api: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Humanize returns the user-facing message for any error coming out of this
// package.
func Humanize(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "something went wrong, please try again"
}

// IsNotFound reports whether err is a classified 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsNetwork reports whether err is a timeout or transport failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

func networkError(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "network error, check your connection and try again",
		cause:   cause,
	}
}

// classify maps a non-2xx status to an Error. A message supplied by the
// server body takes precedence over the derived one.
func classify(status int, serverMessage string) *Error {
	e := &Error{Status: status}
	switch {
	case status == 404:
		e.Kind = KindNotFound
		e.Message = "record not found"
	case status == 400 || status == 422:
		e.Kind = KindValidation
		e.Message = "invalid request, check the submitted details"
	case status == 429:
		e.Kind = KindHTTP
		e.Message = "too many requests, wait a moment and try again"
	case status >= 500:
		e.Kind = KindHTTP
		e.Message = "server error, please try again later"
	default:
		e.Kind = KindHTTP
		e.Message = "request failed"
	}
	if serverMessage != "" {
		e.Message = serverMessage
	}
	return e
}
