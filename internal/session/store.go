// Package session manages per-session chat transcripts. A transcript is an
// append-only ordered message sequence owned by exactly one caller; it can
// grow or be cleared in full, never edited. Two backends implement the same
// interface: an in-memory manager for single instances and a Redis store
// for multi-instance deployments.
package session

import (
	"context"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// Store is the transcript storage contract.
type Store interface {
	// Create registers a new session and returns its ID.
	Create(ctx context.Context) (string, error)
	// Append adds a message to the session's transcript.
	Append(ctx context.Context, sessionID string, msg domain.ChatMessage) error
	// Messages returns the transcript in append order.
	Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	// Clear empties the transcript but keeps the session alive.
	Clear(ctx context.Context, sessionID string) error
	// Close releases backend resources.
	Close() error
}
