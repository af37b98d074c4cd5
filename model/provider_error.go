package model

import (
	"errors"
	"fmt"
)

// ProviderErrorKind classifies provider failures into a small set of categories
// suitable for retry and UX decisions.
type ProviderErrorKind string

const (
	// ProviderErrorKindUnavailable indicates the CLI binary could not be located
	// or launched at all.
	ProviderErrorKindUnavailable ProviderErrorKind = "unavailable"

	// ProviderErrorKindTimeout indicates the overall deadline expired.
	ProviderErrorKindTimeout ProviderErrorKind = "timeout"

	// ProviderErrorKindStall indicates the idle or per-tool-call deadline expired.
	ProviderErrorKindStall ProviderErrorKind = "stall"

	// ProviderErrorKindResumeRejected indicates the child rejected a resumed
	// session id.
	ProviderErrorKindResumeRejected ProviderErrorKind = "resume_rejected"

	// ProviderErrorKindUnknown indicates an unclassified provider failure.
	ProviderErrorKindUnknown ProviderErrorKind = "unknown"
)

// ProviderError describes a failure attributable to a specific CLI provider.
// It crosses package boundaries so the orchestrator and its callers can
// surface stable, structured information instead of opaque strings.
type ProviderError struct {
	provider  string
	operation string
	kind      ProviderErrorKind
	message   string
	retryable bool
	cause     error
}

// NewProviderError constructs a ProviderError. provider and kind are required.
// cause may be nil but is recommended to preserve the original error chain.
func NewProviderError(provider, operation string, kind ProviderErrorKind, message string, retryable bool, cause error) *ProviderError {
	if provider == "" {
		panic("model: provider is required")
	}
	if kind == "" {
		panic("model: provider error kind is required")
	}
	return &ProviderError{
		provider:  provider,
		operation: operation,
		kind:      kind,
		message:   message,
		retryable: retryable,
		cause:     cause,
	}
}

// Provider returns the provider tag (for example, "claude-code").
func (e *ProviderError) Provider() string { return e.provider }

// Operation returns the operation name when known (for example, "spawn").
func (e *ProviderError) Operation() string { return e.operation }

// Kind returns the coarse-grained error classification.
func (e *ProviderError) Kind() ProviderErrorKind { return e.kind }

// Retryable reports whether retrying the call may succeed without changing the request.
func (e *ProviderError) Retryable() bool { return e.retryable }

func (e *ProviderError) Error() string {
	op := e.operation
	if op == "" {
		op = "request"
	}
	msg := e.message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	if msg == "" {
		msg = "provider error"
	}
	return fmt.Sprintf("%s %s(%s): %s", e.provider, e.kind, op, msg)
}

// Unwrap returns the underlying error to preserve the original error chain.
func (e *ProviderError) Unwrap() error { return e.cause }

// AsProviderError returns the first ProviderError in err's chain, if any.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
