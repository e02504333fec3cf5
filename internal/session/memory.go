package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// MemoryStore keeps transcripts in process memory. The map is guarded for
// concurrent session creation and listing; each transcript itself is only
// ever used by its owning caller.
type MemoryStore struct {
	logger      *logrus.Logger
	maxMessages int

	mu       sync.RWMutex
	sessions map[string]*record
}

type record struct {
	createdAt    time.Time
	lastActivity time.Time
	messages     []domain.ChatMessage
}

// NewMemoryStore creates an in-memory transcript store. maxMessages bounds
// each transcript as a sliding window; zero means unbounded.
func NewMemoryStore(logger *logrus.Logger, maxMessages int) *MemoryStore {
	return &MemoryStore{
		logger:      logger,
		maxMessages: maxMessages,
		sessions:    make(map[string]*record),
	}
}

// Create registers a new session with a fresh UUID.
func (s *MemoryStore) Create(_ context.Context) (string, error) {
	id := uuid.New().String()
	now := time.Now()

	s.mu.Lock()
	s.sessions[id] = &record{createdAt: now, lastActivity: now}
	s.mu.Unlock()

	s.logger.WithField("session_id", id).Debug("Created chat session")
	return id, nil
}

// Append adds a validated message to the transcript.
func (s *MemoryStore) Append(_ context.Context, sessionID string, msg domain.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("append to %s: %w", sessionID, domain.ErrSessionNotFound)
	}

	rec.messages = append(rec.messages, msg)
	rec.lastActivity = time.Now()
	if s.maxMessages > 0 && len(rec.messages) > s.maxMessages {
		// Sliding window keeps per-session memory bounded.
		rec.messages = rec.messages[len(rec.messages)-s.maxMessages:]
	}
	return nil
}

// Messages returns a copy of the transcript in append order.
func (s *MemoryStore) Messages(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("messages of %s: %w", sessionID, domain.ErrSessionNotFound)
	}

	out := make([]domain.ChatMessage, len(rec.messages))
	copy(out, rec.messages)
	return out, nil
}

// Clear empties the transcript but keeps the session registered.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("clear of %s: %w", sessionID, domain.ErrSessionNotFound)
	}

	rec.messages = nil
	rec.lastActivity = time.Now()
	return nil
}

// Count returns the number of live sessions.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
