package esi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed ESI call. Every response is classified before
// the body is decoded.
type ErrorKind int

const (
	// KindErrorResponse is any HTTP status >= 400 other than the rate-limit
	// signal. Retryable at the next scheduled run, never inline.
	KindErrorResponse ErrorKind = iota

	// KindRateLimited is HTTP 420, the upstream error-limit signal. The
	// caller must abort the current batch rather than retry.
	KindRateLimited

	// KindConnection is a transport-level failure before a status was read.
	KindConnection

	// KindDecode is a body that did not unmarshal into the expected shape.
	KindDecode

	// KindNoPages is a paginated response missing the x-pages header, a
	// protocol error.
	KindNoPages

	// KindNotPublished marks a history fetch for an item that is no longer
	// published upstream. Pipelines treat this as "skip", not as a failure.
	KindNotPublished
)

func (k ErrorKind) String() string {
	switch k {
	case KindErrorResponse:
		return "error_response"
	case KindRateLimited:
		return "rate_limited"
	case KindConnection:
		return "connection"
	case KindDecode:
		return "decode"
	case KindNoPages:
		return "no_pages"
	case KindNotPublished:
		return "not_published"
	default:
		return "unknown"
	}
}

// Error is a classified ESI failure.
type Error struct {
	Kind   ErrorKind
	Status int    // HTTP status, 0 if the request never completed
	Path   string // Request path without the base URL
	Err    error  // Underlying transport/decode error, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("esi %s %s: %v", e.Kind, e.Path, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("esi %s %s: status %d", e.Kind, e.Path, e.Status)
	}
	return fmt.Sprintf("esi %s %s", e.Kind, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is the upstream rate-limit signal.
func IsRateLimited(err error) bool { return hasKind(err, KindRateLimited) }

// IsNotPublished reports whether err marks an unpublished item.
func IsNotPublished(err error) bool { return hasKind(err, KindNotPublished) }

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
