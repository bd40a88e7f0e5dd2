package types

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is a network or timeout failure talking to an external API.
	ErrTransport = errors.New("transport error")
	// ErrUpstream is an external API that answered but reported failure or
	// returned an unusable payload.
	ErrUpstream = errors.New("upstream error")
	// ErrMembershipDenied is an explicit non-member status in a required channel.
	ErrMembershipDenied = errors.New("membership denied")
	// ErrRateLimited means the user's cooldown window has not elapsed.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidInput is a malformed or stale callback payload.
	ErrInvalidInput = errors.New("invalid input")
)

// ContentError carries the best available human-readable reason for a failed
// content lookup.
type ContentError struct {
	Kind   error
	Reason string
	Err    error
}

func NewTransportError(reason string, err error) *ContentError {
	return &ContentError{Kind: ErrTransport, Reason: reason, Err: err}
}

func NewUpstreamError(reason string, err error) *ContentError {
	return &ContentError{Kind: ErrUpstream, Reason: reason, Err: err}
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

func (e *ContentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserReason returns the text shown to the user for err.
func UserReason(err error) string {
	var ce *ContentError
	if errors.As(err, &ce) && ce.Reason != "" {
		return ce.Reason
	}
	if err == nil {
		return "Unknown error"
	}
	return err.Error()
}

type RateLimitError struct {
	Remaining int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %d seconds remaining", e.Remaining)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
