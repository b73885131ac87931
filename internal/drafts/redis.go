package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// RedisStore is the production Store backed by Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func draftKey(sessionID string, kind models.FormKind) string {
	return fmt.Sprintf("draft:%s:%s", sessionID, kind)
}

// Save stores the draft under its (session, kind) slot, overwriting any
// previous draft there.
func (s *RedisStore) Save(ctx context.Context, sessionID string, draft Draft) error {
	if draft.SavedAt == "" {
		draft.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return errors.NewDraftStoreFailedError(err)
	}

	if err := s.client.Set(ctx, draftKey(sessionID, draft.Kind), payload, s.ttl).Err(); err != nil {
		return errors.NewDraftStoreFailedError(err)
	}

	s.logger.Debug("Draft saved", map[string]interface{}{
		"kind": string(draft.Kind),
		"path": draft.Path,
	})

	return nil
}

// Load returns the draft for (session, kind), or nil when the slot is
// empty. A payload that fails to decode is dropped and reported as absent.
func (s *RedisStore) Load(ctx context.Context, sessionID string, kind models.FormKind) (*Draft, error) {
	key := draftKey(sessionID, kind)

	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDraftStoreFailedError(err)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		s.logger.Warn("Discarding undecodable draft", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
		_ = s.client.Del(ctx, key).Err()
		return nil, nil
	}

	return &draft, nil
}

// Clear removes the slot. Clearing an empty slot is not an error.
func (s *RedisStore) Clear(ctx context.Context, sessionID string, kind models.FormKind) error {
	if err := s.client.Del(ctx, draftKey(sessionID, kind)).Err(); err != nil {
		return errors.NewDraftStoreFailedError(err)
	}
	return nil
}
