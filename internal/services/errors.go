// Package services implements the notification fan-out core: recipient
// resolution, per-tenant rate limiting, locale-aware content building, batch
// dispatch against the push gateway, audit logging, and the event handlers
// that orchestrate them. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMessageNotFound indicates that the triggering message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrPrayerCardNotFound indicates that the triggering prayer card does
	// not exist.
	ErrPrayerCardNotFound = errors.New("prayer card not found")

	// ErrJournalNotFound indicates that the triggering pastoral journal does
	// not exist.
	ErrJournalNotFound = errors.New("pastoral journal not found")

	// ErrEmptyRecipients is returned when a dispatch request names no
	// candidate users at all (an empty user_ids array is malformed input;
	// a non-empty array that resolves to nobody is not).
	ErrEmptyRecipients = errors.New("recipients.user_ids must not be empty")
)

// RateLimitError is returned when a tenant has exhausted its dispatch budget
// for the current window. RetryAfter is the number of whole seconds until the
// window resets, always >= 1.
type RateLimitError struct {
	RetryAfter int
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}
