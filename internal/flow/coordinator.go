package flow

import (
	"context"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/authwatch"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/drafts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Action is the coordinator's verdict on a submission attempt.
type Action string

const (
	// ActionNone means auth state is still resolving; do nothing.
	ActionNone Action = "none"
	// ActionRedirect means the draft was staged and the client must sign in.
	ActionRedirect Action = "redirect"
	// ActionProceed means the submission may go ahead.
	ActionProceed Action = "proceed"
)

// Decision tells the caller what to do with a submission attempt.
type Decision struct {
	Action       Action
	RedirectURL  string
	Notification string
}

// NotificationLoginRequired is shown when a form is staged pending sign-in.
const NotificationLoginRequired = "Accedi per inviare la richiesta. I tuoi dati sono stati salvati."

// Coordinator gates form submissions on authentication, staging the form
// data before redirecting so nothing typed is lost.
type Coordinator struct {
	drafts drafts.Store
	logger logger.Logger
}

func NewCoordinator(store drafts.Store, log logger.Logger) *Coordinator {
	return &Coordinator{
		drafts: store,
		logger: log,
	}
}

// Coordinate decides what happens to a submission attempt given the current
// auth state. While auth is resolving nothing happens; without an identity
// the draft is staged and the caller is redirected to sign-in with the
// marker; with an identity the submission proceeds.
func (c *Coordinator) Coordinate(
	ctx context.Context,
	sessionID string,
	state authwatch.State,
	kind models.FormKind,
	path string,
	data map[string]interface{},
) (Decision, error) {
	if state.Loading {
		return Decision{Action: ActionNone}, nil
	}

	if !state.Identity.Present() {
		draft := drafts.Draft{
			Kind: kind,
			Path: path,
			Data: data,
		}
		if err := c.drafts.Save(ctx, sessionID, draft); err != nil {
			return Decision{}, err
		}

		c.logger.Info("Submission staged pending sign-in", map[string]interface{}{
			"kind": string(kind),
			"path": path,
		})

		return Decision{
			Action:       ActionRedirect,
			RedirectURL:  EncodeSignInURL(kind, path),
			Notification: NotificationLoginRequired,
		}, nil
	}

	return Decision{Action: ActionProceed}, nil
}
