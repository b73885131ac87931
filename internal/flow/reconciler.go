package flow

import (
	"context"
	"net/url"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/authwatch"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/drafts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// RestoreState describes what the reconciler did for a form fetch.
type RestoreState string

const (
	// RestoreIdle: no identity yet, nothing to do.
	RestoreIdle RestoreState = "idle"
	// RestorePrefill: identity known but no matching draft; only the
	// contact fields were filled in.
	RestorePrefill RestoreState = "prefill"
	// RestoreDone: a matching draft was restored and its slot cleared.
	RestoreDone RestoreState = "done"
)

// NotificationDataRestored is shown when a staged draft comes back.
const NotificationDataRestored = "Bentornato! I dati del modulo sono stati ripristinati."

// RestoreResult carries the reconciler's output for one form fetch.
type RestoreResult struct {
	State        RestoreState
	Fields       map[string]interface{}
	CleanURL     string
	Notification string
}

// Reconciler decides, on every authenticated form fetch, whether a staged
// draft belongs to this exact form and round trip and should be restored.
type Reconciler struct {
	drafts drafts.Store
	logger logger.Logger
}

func NewReconciler(store drafts.Store, log logger.Logger) *Reconciler {
	return &Reconciler{
		drafts: store,
		logger: log,
	}
}

// Reconcile runs once per form-page fetch. A draft is consumed only when
// every condition lines up: identity present, draft present, the stored
// path equals the fetched path, and the URL marker names this form as the
// round trip's origin. Any mismatch leaves the draft in place and falls
// back to prefilling the contact fields.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	sessionID string,
	state authwatch.State,
	kind models.FormKind,
	currentPath string,
	query url.Values,
) (RestoreResult, error) {
	if state.Loading || !state.Identity.Present() {
		return RestoreResult{State: RestoreIdle}, nil
	}

	draft, err := r.drafts.Load(ctx, sessionID, kind)
	if err != nil {
		return RestoreResult{}, err
	}

	marker := DecodeMarker(query)
	match := draft != nil &&
		draft.Path == currentPath &&
		marker.FromForm &&
		marker.Origin == kind

	if !match {
		return RestoreResult{
			State:  RestorePrefill,
			Fields: prefillFields(state.Identity),
		}, nil
	}

	fields := make(map[string]interface{}, len(draft.Data)+2)
	for k, v := range draft.Data {
		fields[k] = v
	}
	overlayIdentity(fields, state.Identity)

	if err := r.drafts.Clear(ctx, sessionID, kind); err != nil {
		return RestoreResult{}, err
	}

	r.logger.Info("Draft restored after sign-in", map[string]interface{}{
		"kind": string(kind),
		"path": currentPath,
	})

	return RestoreResult{
		State:        RestoreDone,
		Fields:       fields,
		CleanURL:     CleanURL(currentPath, query),
		Notification: NotificationDataRestored,
	}, nil
}

// prefillFields seeds a fresh form with the signed-in user's contact data.
func prefillFields(identity models.Identity) map[string]interface{} {
	fields := make(map[string]interface{}, 2)
	overlayIdentity(fields, identity)
	return fields
}

// overlayIdentity writes the identity's name and email over the fields,
// skipping empty identity values so typed data is not blanked out.
func overlayIdentity(fields map[string]interface{}, identity models.Identity) {
	if identity.Name != "" {
		fields["name"] = identity.Name
	}
	if identity.Email != "" {
		fields["email"] = identity.Email
	}
}
