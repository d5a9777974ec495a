package domain

import "errors"

// Sentinel errors shared across layers. Services wrap them with context; callers use errors.Is.
var (
	// ErrNotFound is returned when the target is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrValidationFailed is returned for drafts missing required fields or with malformed instants.
	ErrValidationFailed = errors.New("validation failed")
	// ErrExtractionFailed is returned when the language service replies with data that cannot be
	// read as an event draft or a period. The user may retry with different wording.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrUpstreamUnavailable is returned when the language service is unreachable, times out,
	// or rejects our credentials.
	ErrUpstreamUnavailable = errors.New("language service unavailable")
)
