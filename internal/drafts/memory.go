package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// MemoryStore is an in-memory Store for tests and single-process setups.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	slots map[string]memorySlot
}

type memorySlot struct {
	draft     Draft
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		slots: make(map[string]memorySlot),
	}
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, draft Draft) error {
	if draft.SavedAt == "" {
		draft.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[draftKey(sessionID, draft.Kind)] = memorySlot{
		draft:     draft,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string, kind models.FormKind) (*Draft, error) {
	s.mu.RLock()
	slot, ok := s.slots[draftKey(sessionID, kind)]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(slot.expiresAt) {
		_ = s.Clear(context.Background(), sessionID, kind)
		return nil, nil
	}

	draft := slot.draft
	return &draft, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string, kind models.FormKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, draftKey(sessionID, kind))
	return nil
}
