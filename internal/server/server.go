// Package server is the HTTP surface of the concierge: public catalog and
// content routes, the three intake forms with their sign-in round trip, the
// account routes, and the admin back office.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/accounts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/ai"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/backoffice"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/catalog"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/config"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/observability"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/flow"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/submissions"
)

// Dependencies holds every collaborator the handlers need.
type Dependencies struct {
	Accounts      *accounts.Service
	Submissions   *submissions.Service
	Coordinator   *flow.Coordinator
	Reconciler    *flow.Reconciler
	Catalog       *catalog.Repository
	Search        *catalog.Searcher
	Backoffice    *backoffice.Service
	Content       *ai.ContentService
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	cfg    *config.Config
	deps   Dependencies
	engine *gin.Engine
	errors *errors.ErrorHandler
	http   *http.Server
}

func New(cfg *config.Config, deps Dependencies) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		errors: errors.NewErrorHandler(deps.Logger),
	}

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestTelemetry())
	engine.Use(cors.New(corsCfg))

	s.engine = engine
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", s.handleSignUp)
	auth.POST("/signin", s.handleSignIn)
	auth.POST("/signout", s.withSession(), s.handleSignOut)
	auth.POST("/password-reset", s.handlePasswordReset)
	auth.GET("/me", s.withSession(), s.handleMe)

	cat := api.Group("/catalog")
	cat.GET("", s.handleCatalogList)
	cat.GET("/brands", s.handleCatalogBrands)
	cat.GET("/search", s.handleCatalogSearch)
	cat.GET("/:id", s.handleCatalogDetail)

	forms := api.Group("/forms", s.withSession())
	forms.GET("/:kind", s.handleFormFetch)
	forms.POST("/:kind", s.handleFormSubmit)

	content := api.Group("/content")
	content.GET("/hero", s.handleHero)
	content.GET("/news", s.handleNews)
	content.POST("/suggestions", s.handleSuggestions)

	admin := api.Group("/admin", s.withSession(), s.requireAdmin())
	admin.GET("/dashboard", s.handleDashboard)
	admin.GET("/requests/:kind", s.handleAdminList)
	admin.GET("/requests/:kind/:id", s.handleAdminDetail)
	admin.PUT("/requests/:kind/:id/status", s.handleAdminStatus)
	admin.PUT("/requests/:kind/:id/notes", s.handleAdminNotes)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Millisecond,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.deps.Logger.Info("HTTP server listening", map[string]interface{}{
		"address": addr,
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.cfg.App.Name})
}

// respondError shapes any error into the client-safe envelope.
func (s *Server) respondError(c *gin.Context, err error, operation string) {
	status, resp := s.errors.HandleError(err, operation)
	c.JSON(status, resp)
}
