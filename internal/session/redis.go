package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// RedisStore keeps transcripts in Redis lists so multiple server instances
// can serve the same sessions. Each session has a marker key and a message
// list, both refreshed to the configured TTL on activity.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStore{client: client, logger: logger, ttl: ttl}, nil
}

func sessionKey(id string) string  { return "session:" + id }
func messagesKey(id string) string { return "session:" + id + ":messages" }

// Create registers a new session marker with the store TTL.
func (s *RedisStore) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if err := s.client.Set(ctx, sessionKey(id), time.Now().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.WithField("session_id", id).Debug("Created chat session")
	return id, nil
}

// Append pushes a message onto the session's list and refreshes both TTLs.
func (s *RedisStore) Append(ctx context.Context, sessionID string, msg domain.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := s.exists(ctx, sessionID); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, messagesKey(sessionID), payload)
	pipe.Expire(ctx, messagesKey(sessionID), s.ttl)
	pipe.Expire(ctx, sessionKey(sessionID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Messages reads the full transcript in append order.
func (s *RedisStore) Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if err := s.exists(ctx, sessionID); err != nil {
		return nil, err
	}

	raw, err := s.client.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	out := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// Skip corrupted entries rather than failing the whole read.
			s.logger.WithError(err).Warn("Dropping corrupted transcript entry")
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Clear deletes the message list but keeps the session marker.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.exists(ctx, sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, messagesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) exists(ctx context.Context, sessionID string) error {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return nil
}
