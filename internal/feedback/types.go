// Package feedback provides user feedback storage for triage assessments.
// It stores user agreements and corrections to audit assessment quality.
package feedback

import (
	"context"
	"io"
	"time"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// Feedback represents a user's feedback on a triage assessment.
type Feedback struct {
	ID           int64              `json:"id,omitempty"`
	InputText    string             `json:"input_text"`           // Original user input
	SymptomKey   string             `json:"symptom_key"`          // Canonical sorted symptom key
	SessionID    string             `json:"session_id,omitempty"` // Chat session, if any
	AssignedTier domain.UrgencyTier `json:"assigned_tier"`        // System's assessment
	UserTier     domain.UrgencyTier `json:"user_tier"`            // User's own judgment
	UserAgreed   bool               `json:"user_agreed"`          // Did user agree with assessment?
	Notes        string             `json:"notes,omitempty"`      // User notes
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates user feedback for an assessment.
	// If feedback for the same symptom_key+session_id exists, it will be updated.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves feedback for a symptom key.
	// If sessionID is empty, returns the first matching entry.
	Get(ctx context.Context, symptomKey string, sessionID string) (*Feedback, error)

	// List returns all feedback entries with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
