// Package sessions stores signed-in sessions in Redis, keyed by the opaque
// bearer token handed to the client.
package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

const keyPrefix = "session:"

// Store creates, resolves and revokes sessions.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Create persists a new session and returns its bearer token.
func (s *Store) Create(ctx context.Context, session models.Session) (string, error) {
	token := uuid.New().String()

	now := time.Now().UTC()
	session.ID = token
	session.CreatedAt = now
	session.ExpiresAt = now.Add(s.ttl)

	payload, err := json.Marshal(session)
	if err != nil {
		return "", errors.NewExternalServiceError("sessions", err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", errors.NewExternalServiceError("sessions", err)
	}

	s.logger.Debug("Session created", map[string]interface{}{
		"userId": session.UserID,
	})

	return token, nil
}

// Get resolves a token to its session. Missing, expired, or undecodable
// sessions all resolve to nil.
func (s *Store) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewExternalServiceError("sessions", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.logger.Warn("Dropping undecodable session", map[string]interface{}{
			"error": err.Error(),
		})
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return nil, nil
	}

	if session.IsExpired() {
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return nil, nil
	}

	return &session, nil
}

// Delete revokes a session. Revoking an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return errors.NewExternalServiceError("sessions", err)
	}
	return nil
}
