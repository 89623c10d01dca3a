package auth

import "errors"

// Sentinel errors returned by token validation. Callers match them with
// errors.Is and map them to HTTP 401 at the API boundary.
var (
	// ErrInvalidToken is returned when a token is malformed or its
	// signature does not verify against the configured secret.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when a token's expiry, adjusted for the
	// allowed clock skew, is in the past.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken is returned when a request carries no token at all.
	ErrMissingToken = errors.New("authentication token is missing")
)
