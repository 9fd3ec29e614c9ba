package vlm

import (
	"errors"
	"fmt"
)

// Kind classifies a VLM failure. The OCR stage keys its skip-vs-abort
// decision off this, not off raw status codes.
type Kind int

const (
	// KindAuth is a 401/403 — bad or missing credentials. Not retryable.
	KindAuth Kind = iota
	// KindNotFound is a 404 — wrong endpoint or unknown model. Not retryable.
	KindNotFound
	// KindTimeout means the request exceeded the configured timeout. Retryable.
	KindTimeout
	// KindTransient is a connection failure or HTTP 5xx. Retryable.
	KindTransient
	// KindClient is any other 4xx. Not retryable.
	KindClient
	// KindProtocol means the response body was missing expected fields. Not retryable.
	KindProtocol
)

// String returns the kind's identifier for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	case KindTransient:
		return "transient"
	case KindClient:
		return "client"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a classified VLM client failure.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 for network-level failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("vlm %s error (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("vlm %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth a retry attempt.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindTransient
}

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsFatal reports whether err is a configuration-level failure (auth or
// not-found) that should abort a whole OCR run rather than just one page.
func IsFatal(err error) bool {
	if ve, ok := AsError(err); ok {
		return ve.Kind == KindAuth || ve.Kind == KindNotFound
	}
	return false
}

func isRetryable(err error) bool {
	if ve, ok := AsError(err); ok {
		return ve.Retryable()
	}
	return false
}
