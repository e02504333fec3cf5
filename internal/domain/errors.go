package domain

import "errors"

// Sentinel errors shared across packages. Engine paths never surface these
// to end users; malformed analysis input degrades to a ROUTINE clarification
// result instead of failing.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidUrgency       = errors.New("invalid urgency tier")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidFeatureVector = errors.New("invalid feature vector")
	ErrModelUnavailable     = errors.New("risk model unavailable")
)
