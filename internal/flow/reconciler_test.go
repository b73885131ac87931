package flow

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/authwatch"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/drafts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func newTestReconciler() (*Reconciler, drafts.Store) {
	store := drafts.NewMemoryStore(time.Hour)
	return NewReconciler(store, logger.NewNoOpLogger()), store
}

func signedIn() authwatch.State {
	return authwatch.State{
		Identity: models.Identity{ID: "u-1", Name: "Marco Rossi", Email: "marco@example.com"},
	}
}

func markerQuery(kind models.FormKind, path string) url.Values {
	q := url.Values{}
	q.Set("redirect", path)
	q.Set("fromForm", "true")
	q.Set("origin", string(kind))
	return q
}

func stageSellDraft(t *testing.T, store drafts.Store) {
	t.Helper()
	err := store.Save(context.Background(), "sess-1", drafts.Draft{
		Kind: models.KindSellForm,
		Path: "/vendi",
		Data: map[string]interface{}{
			"watchBrand":   "Rolex",
			"watchModel":   "Daytona",
			"desiredPrice": float64(30000),
		},
	})
	require.NoError(t, err)
}

// ==========================
// Idle Cases
// ==========================

func TestReconcile_LoadingIsIdle(t *testing.T) {
	rec, store := newTestReconciler()
	stageSellDraft(t, store)

	result, err := rec.Reconcile(context.Background(), "sess-1",
		authwatch.State{Loading: true},
		models.KindSellForm, "/vendi", markerQuery(models.KindSellForm, "/vendi"))

	require.NoError(t, err)
	assert.Equal(t, RestoreIdle, result.State)

	// Draft untouched.
	draft, err := store.Load(context.Background(), "sess-1", models.KindSellForm)
	require.NoError(t, err)
	assert.NotNil(t, draft)
}

func TestReconcile_SignedOutIsIdle(t *testing.T) {
	rec, store := newTestReconciler()
	stageSellDraft(t, store)

	result, err := rec.Reconcile(context.Background(), "sess-1",
		authwatch.State{},
		models.KindSellForm, "/vendi", markerQuery(models.KindSellForm, "/vendi"))

	require.NoError(t, err)
	assert.Equal(t, RestoreIdle, result.State)
	assert.Empty(t, result.Fields)
}

// ==========================
// Full Restore
// ==========================

func TestReconcile_MatchingDraftRestoredAndCleared(t *testing.T) {
	rec, store := newTestReconciler()
	stageSellDraft(t, store)
	ctx := context.Background()

	result, err := rec.Reconcile(ctx, "sess-1", signedIn(),
		models.KindSellForm, "/vendi", markerQuery(models.KindSellForm, "/vendi"))

	require.NoError(t, err)
	assert.Equal(t, RestoreDone, result.State)

	// Draft fields restored with identity contact data overlaid.
	assert.Equal(t, "Rolex", result.Fields["watchBrand"])
	assert.Equal(t, "Daytona", result.Fields["watchModel"])
	assert.Equal(t, float64(30000), result.Fields["desiredPrice"])
	assert.Equal(t, "Marco Rossi", result.Fields["name"])
	assert.Equal(t, "marco@example.com", result.Fields["email"])

	// The marker is gone from the reported URL.
	assert.Equal(t, "/vendi", result.CleanURL)
	assert.Equal(t, NotificationDataRestored, result.Notification)

	// The slot is consumed.
	draft, err := store.Load(ctx, "sess-1", models.KindSellForm)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestReconcile_OverlaySkipsEmptyIdentityValues(t *testing.T) {
	rec, store := newTestReconciler()
	ctx := context.Background()

	err := store.Save(ctx, "sess-1", drafts.Draft{
		Kind: models.KindSellForm,
		Path: "/vendi",
		Data: map[string]interface{}{"name": "Typed Name", "watchBrand": "Rolex"},
	})
	require.NoError(t, err)

	// Identity has an email but no display name.
	state := authwatch.State{Identity: models.Identity{ID: "u-1", Email: "marco@example.com"}}

	result, err := rec.Reconcile(ctx, "sess-1", state,
		models.KindSellForm, "/vendi", markerQuery(models.KindSellForm, "/vendi"))

	require.NoError(t, err)
	assert.Equal(t, RestoreDone, result.State)
	assert.Equal(t, "Typed Name", result.Fields["name"])
	assert.Equal(t, "marco@example.com", result.Fields["email"])
}

// ==========================
// Mismatches Fall Back to Prefill
// ==========================

func TestReconcile_WrongOriginLeavesDraft(t *testing.T) {
	rec, store := newTestReconciler()
	stageSellDraft(t, store)
	ctx := context.Background()

	// Marker says the round trip started on the repair form.
	result, err := rec.Reconcile(ctx, "sess-1", signedIn(),
		models.KindSellForm, "/vendi", markerQuery(models.KindRepairForm, "/vendi"))

	require.NoError(t, err)
	assert.Equal(t, RestorePrefill, result.State)
	assert.Equal(t, "Marco Rossi", result.Fields["name"])
	assert.Equal(t, "marco@example.com", result.Fields["email"])
	assert.Nil(t, result.Fields["watchBrand"])

	draft, err := store.Load(ctx, "sess-1", models.KindSellForm)
	require.NoError(t, err)
	assert.NotNil(t, draft)
}

func TestReconcile_WrongPathLeavesDraft(t *testing.T) {
	rec, store := newTestReconciler()
	ctx := context.Background()

	err := store.Save(ctx, "sess-1", drafts.Draft{
		Kind: models.KindSellForm,
		Path: "/altro-percorso",
		Data: map[string]interface{}{"watchBrand": "Rolex"},
	})
	require.NoError(t, err)

	result, err := rec.Reconcile(ctx, "sess-1", signedIn(),
		models.KindSellForm, "/vendi", markerQuery(models.KindSellForm, "/vendi"))

	require.NoError(t, err)
	assert.Equal(t, RestorePrefill, result.State)

	draft, err := store.Load(ctx, "sess-1", models.KindSellForm)
	require.NoError(t, err)
	assert.NotNil(t, draft)
}

func TestReconcile_NoMarkerLeavesDraft(t *testing.T) {
	rec, store := newTestReconciler()
	stageSellDraft(t, store)
	ctx := context.Background()

	result, err := rec.Reconcile(ctx, "sess-1", signedIn(),
		models.KindSellForm, "/vendi", url.Values{})

	require.NoError(t, err)
	assert.Equal(t, RestorePrefill, result.State)

	draft, err := store.Load(ctx, "sess-1", models.KindSellForm)
	require.NoError(t, err)
	assert.NotNil(t, draft)
}

func TestReconcile_NoDraftPrefillsContactFields(t *testing.T) {
	rec, _ := newTestReconciler()

	result, err := rec.Reconcile(context.Background(), "sess-1", signedIn(),
		models.KindRequestForm, "/richiesta-personalizzata", url.Values{})

	require.NoError(t, err)
	assert.Equal(t, RestorePrefill, result.State)
	assert.Equal(t, "Marco Rossi", result.Fields["name"])
	assert.Equal(t, "marco@example.com", result.Fields["email"])
	assert.Len(t, result.Fields, 2)
}
