package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type suggestionsRequest struct {
	Interest string `json:"interest" binding:"required"`
}

// The content routes never fail: the service degrades to placeholder
// content on any AI error, so these handlers always answer 200.

func (s *Server) handleHero(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tagline": s.deps.Content.HeroTagline(c.Request.Context()),
	})
}

func (s *Server) handleNews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": s.deps.Content.News(c.Request.Context()),
	})
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Richiesta non valida"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": s.deps.Content.Suggestions(c.Request.Context(), req.Interest),
	})
}
