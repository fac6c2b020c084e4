package models

import "errors"

// Error taxonomy. Wrapped with fmt.Errorf("%w") at the call sites and
// classified with errors.Is.
var (
	// ErrValidation marks malformed input (bad order lines, price
	// mismatch, unknown event status). Rejected synchronously, nothing
	// is persisted.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a stale sequence number or an event against an
	// already-terminal order. The event is dropped and logged, never
	// surfaced to the gateway as a failure.
	ErrConflict = errors.New("conflicting state transition")

	// ErrNotFound marks a missing photo, order, or print spec.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks an unreachable dependency. Entitlement
	// resolution fails closed on it; mutations are retried by the caller.
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrFulfillment marks a print-partner failure. It is recorded on the
	// line's fulfillment sub-status and never reverses payment state.
	ErrFulfillment = errors.New("fulfillment failed")
)
