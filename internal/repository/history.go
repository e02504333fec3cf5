// Package repository persists analysis history records in PostgreSQL.
// History is an audit log of individual analysis calls; it never stores
// conversation transcripts.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
	"github.com/healthai-suite/triage-server/internal/engine"
)

// AnalysisRecord is one persisted analysis call.
type AnalysisRecord struct {
	ID              uuid.UUID          `json:"id"`
	SessionID       string             `json:"session_id,omitempty"`
	InputText       string             `json:"input_text"`
	SymptomKey      string             `json:"symptom_key"`
	Urgency         domain.UrgencyTier `json:"urgency"`
	Message         string             `json:"message"`
	Recommendations []string           `json:"recommendations"`
	CreatedAt       time.Time          `json:"created_at"`
}

// NewRecord builds a history record from an analysis result.
func NewRecord(sessionID, inputText string, result domain.AnalysisResult) *AnalysisRecord {
	return &AnalysisRecord{
		ID:              uuid.New(),
		SessionID:       sessionID,
		InputText:       inputText,
		SymptomKey:      engine.CanonicalKey(result.Matched),
		Urgency:         result.Urgency,
		Message:         result.Message,
		Recommendations: result.Recommendations,
	}
}

// HistoryRepository handles analysis history persistence
type HistoryRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *pgxpool.Pool, logger *logrus.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new analysis record into the database
func (r *HistoryRepository) Create(ctx context.Context, record *AnalysisRecord) error {
	query := `
		INSERT INTO analysis_history (
			id, session_id, input_text, symptom_key, urgency, message, recommendations
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.SessionID,
		record.InputText,
		record.SymptomKey,
		string(record.Urgency),
		record.Message,
		record.Recommendations,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"record_id":   record.ID,
			"symptom_key": record.SymptomKey,
			"error":       err,
		}).Error("Failed to create analysis record")
		return fmt.Errorf("creating analysis record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"record_id":   record.ID,
		"symptom_key": record.SymptomKey,
		"urgency":     record.Urgency,
	}).Info("Analysis record created")

	return nil
}

// GetByID retrieves an analysis record by its ID
func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error) {
	query := `
		SELECT id, session_id, input_text, symptom_key, urgency, message,
			   recommendations, created_at
		FROM analysis_history
		WHERE id = $1`

	record, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("analysis record not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"record_id": id,
			"error":     err,
		}).Error("Failed to get analysis record by ID")
		return nil, fmt.Errorf("getting analysis record by ID: %w", err)
	}

	return record, nil
}

// ListBySession retrieves records for one chat session with pagination
func (r *HistoryRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*AnalysisRecord, error) {
	query := `
		SELECT id, session_id, input_text, symptom_key, urgency, message,
			   recommendations, created_at
		FROM analysis_history
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err,
		}).Error("Failed to list analysis records by session")
		return nil, fmt.Errorf("listing analysis records by session: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListByUrgency retrieves records of one urgency tier with pagination
func (r *HistoryRepository) ListByUrgency(ctx context.Context, tier domain.UrgencyTier, limit, offset int) ([]*AnalysisRecord, error) {
	query := `
		SELECT id, session_id, input_text, symptom_key, urgency, message,
			   recommendations, created_at
		FROM analysis_history
		WHERE urgency = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, string(tier), limit, offset)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"urgency": tier,
			"error":   err,
		}).Error("Failed to list analysis records by urgency")
		return nil, fmt.Errorf("listing analysis records by urgency: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// CountByUrgency returns per-tier record counts
func (r *HistoryRepository) CountByUrgency(ctx context.Context) (map[domain.UrgencyTier]int64, error) {
	query := `SELECT urgency, COUNT(*) FROM analysis_history GROUP BY urgency`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting analysis records: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.UrgencyTier]int64)
	for rows.Next() {
		var tier string
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[domain.UrgencyTier(tier)] = count
	}

	return counts, rows.Err()
}

// Delete removes an analysis record from the database
func (r *HistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM analysis_history WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"record_id": id,
			"error":     err,
		}).Error("Failed to delete analysis record")
		return fmt.Errorf("deleting analysis record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("analysis record not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"record_id": id,
	}).Info("Analysis record deleted")

	return nil
}

func scanRecord(row pgx.Row) (*AnalysisRecord, error) {
	var record AnalysisRecord
	var urgency string

	err := row.Scan(
		&record.ID,
		&record.SessionID,
		&record.InputText,
		&record.SymptomKey,
		&urgency,
		&record.Message,
		&record.Recommendations,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Urgency = domain.UrgencyTier(urgency)
	return &record, nil
}

func collectRecords(rows pgx.Rows) ([]*AnalysisRecord, error) {
	var records []*AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis record row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analysis record rows: %w", err)
	}

	return records, nil
}
