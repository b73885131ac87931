// Package drafts holds form data captured before an interrupted submission,
// keyed by session and form kind, so it can be restored after sign-in.
package drafts

import (
	"context"
	"time"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Draft is a saved, not-yet-submitted form payload.
type Draft struct {
	Kind    models.FormKind        `json:"kind"`
	Path    string                 `json:"path"`
	Data    map[string]interface{} `json:"data"`
	SavedAt string                 `json:"savedAt"`
}

// Store keeps at most one draft per (session, kind). Save overwrites any
// previous draft for the same slot. Load returns nil when the slot is empty,
// expired, or holds an undecodable payload; the undecodable case is treated
// exactly like absence and the slot is discarded. Clear is idempotent.
type Store interface {
	Save(ctx context.Context, sessionID string, draft Draft) error
	Load(ctx context.Context, sessionID string, kind models.FormKind) (*Draft, error)
	Clear(ctx context.Context, sessionID string, kind models.FormKind) error
}

// DefaultTTL is how long a saved draft survives before expiring.
const DefaultTTL = 24 * time.Hour
