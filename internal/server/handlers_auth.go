package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/accounts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

func (s *Server) handleSignUp(c *gin.Context) {
	var input accounts.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	result, err := s.deps.Accounts.SignUp(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err, "sign_up")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	result, err := s.deps.Accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err, "sign_in")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSignOut(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := s.deps.Accounts.SignOut(c.Request.Context(), token); err != nil {
		s.respondError(c, err, "sign_out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	if err := s.deps.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.respondError(c, err, "password_reset")
		return
	}

	// always the same answer, known email or not
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMe(c *gin.Context) {
	session := sessionFrom(c)
	if session == nil {
		s.respondError(c, errors.NewSessionExpiredError(), "me")
		return
	}
	c.JSON(http.StatusOK, session)
}
