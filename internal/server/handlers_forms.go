package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/flow"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/submissions"
)

type formSubmitRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
}

// handleFormFetch serves a form page load. For a signed-in user coming back
// from the sign-in round trip it restores the staged draft; otherwise it
// prefills contact fields or returns an empty form.
func (s *Server) handleFormFetch(c *gin.Context) {
	kind, err := models.ParseFormKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "INVALID_FORM_KIND", "message": "Modulo inesistente"})
		return
	}

	result, err := s.deps.Reconciler.Reconcile(
		c.Request.Context(),
		clientIDFrom(c),
		authStateFrom(c),
		kind,
		kind.PagePath(),
		c.Request.URL.Query(),
	)
	if err != nil {
		s.respondError(c, err, "form_fetch")
		return
	}

	if result.State == flow.RestoreDone && s.deps.Observability != nil {
		s.deps.Observability.RecordDraftRestore(c.Request.Context(), string(kind))
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":         kind,
		"path":         kind.PagePath(),
		"state":        result.State,
		"fields":       result.Fields,
		"cleanUrl":     result.CleanURL,
		"notification": result.Notification,
	})
}

// handleFormSubmit is the submission gate. Unauthenticated attempts stage
// the typed data and answer with the sign-in redirect; authenticated ones
// validate and persist.
func (s *Server) handleFormSubmit(c *gin.Context) {
	kind, err := models.ParseFormKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "INVALID_FORM_KIND", "message": "Modulo inesistente"})
		return
	}

	var req formSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	decision, err := s.deps.Coordinator.Coordinate(
		c.Request.Context(),
		clientIDFrom(c),
		authStateFrom(c),
		kind,
		kind.PagePath(),
		req.Data,
	)
	if err != nil {
		s.respondError(c, err, "form_submit")
		return
	}

	switch decision.Action {
	case flow.ActionNone:
		// Auth state still unresolved: nothing staged, nothing persisted.
		c.JSON(http.StatusAccepted, gin.H{"action": decision.Action})
		return
	case flow.ActionRedirect:
		c.JSON(http.StatusUnauthorized, gin.H{
			"action":       decision.Action,
			"redirectUrl":  decision.RedirectURL,
			"notification": decision.Notification,
		})
		return
	}

	session := sessionFrom(c)
	output, err := s.deps.Submissions.Execute(c.Request.Context(), &submissions.Input{
		Kind:   kind,
		UserID: session.UserID,
		Data:   req.Data,
	})
	if err != nil {
		if s.deps.Observability != nil {
			s.deps.Observability.RecordSubmission(c.Request.Context(), string(kind), "rejected")
		}
		s.respondError(c, err, "form_submit")
		return
	}

	if s.deps.Observability != nil {
		s.deps.Observability.RecordSubmission(c.Request.Context(), string(kind), "created")
	}

	c.JSON(http.StatusCreated, output)
}
