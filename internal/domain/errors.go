package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidEventKind is returned when an event carries a kind outside
	// the closed EventKind enumeration.
	ErrInvalidEventKind = errors.New("invalid event kind")

	// ErrMissingTask is returned when an event carries no task snapshot.
	ErrMissingTask = errors.New("event is missing its task snapshot")

	// ErrNoRecipients is returned when an event resolves to no recipients
	// at all (neither assignee nor creator is known).
	ErrNoRecipients = errors.New("event has no resolvable recipients")
)
