package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type notesUpdateRequest struct {
	Notes string `json:"notes"`
}

func adminKind(c *gin.Context) (models.FormKind, bool) {
	kind, err := models.ParseFormKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "INVALID_FORM_KIND", "message": "Modulo inesistente"})
		return "", false
	}
	return kind, true
}

func (s *Server) handleDashboard(c *gin.Context) {
	dashboard, err := s.deps.Backoffice.Dashboard(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "admin_dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) handleAdminList(c *gin.Context) {
	kind, ok := adminKind(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	summaries, err := s.deps.Backoffice.List(c.Request.Context(), kind, c.Query("status"), limit, offset)
	if err != nil {
		s.respondError(c, err, "admin_list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": summaries, "count": len(summaries)})
}

func (s *Server) handleAdminDetail(c *gin.Context) {
	kind, ok := adminKind(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var record interface{}
	var err error
	switch kind {
	case models.KindRepairForm:
		record, err = s.deps.Backoffice.GetRepair(c.Request.Context(), id)
	case models.KindRequestForm:
		record, err = s.deps.Backoffice.GetPersonalized(c.Request.Context(), id)
	case models.KindSellForm:
		record, err = s.deps.Backoffice.GetSell(c.Request.Context(), id)
	}
	if err != nil {
		s.respondError(c, err, "admin_detail")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleAdminStatus(c *gin.Context) {
	kind, ok := adminKind(c)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	if err := s.deps.Backoffice.ChangeStatus(c.Request.Context(), kind, c.Param("id"), req.Status); err != nil {
		s.respondError(c, err, "admin_status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (s *Server) handleAdminNotes(c *gin.Context) {
	kind, ok := adminKind(c)
	if !ok {
		return
	}

	var req notesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	if err := s.deps.Backoffice.SaveNotes(c.Request.Context(), kind, c.Param("id"), req.Notes); err != nil {
		s.respondError(c, err, "admin_notes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
