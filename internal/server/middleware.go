package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/authwatch"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

const (
	ctxSession   = "session"
	ctxClientID  = "clientId"
	ctxAuthWatch = "authWatch"

	// clientCookie identifies a browser across the sign-in round trip, so a
	// draft staged before authentication can be found again afterwards.
	clientCookie = "tc_client"
)

// requestTelemetry logs each request and feeds the request metrics.
func (s *Server) requestTelemetry() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := http.StatusText(c.Writer.Status())

		if s.deps.Observability != nil {
			s.deps.Observability.RecordRequest(c.Request.Context(), route, status)
			s.deps.Observability.RecordRequestDuration(c.Request.Context(), time.Since(start), route)
		}

		s.deps.Logger.Debug("Request handled", map[string]interface{}{
			"method":     c.Request.Method,
			"route":      route,
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
}

// withSession resolves the bearer token, if any, and guarantees a client id.
// It never rejects: anonymous requests pass through with no session, which
// is exactly the state the submission coordinator acts on. The request's
// auth watcher starts loading and is resolved here, so any consumer
// subscribing later sees a settled state.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		watch := authwatch.NewObserver()
		c.Set(ctxAuthWatch, watch)

		identity := models.Identity{}
		if token := bearerToken(c); token != "" {
			session, err := s.deps.Accounts.Resolve(c.Request.Context(), token)
			if err != nil {
				s.respondError(c, err, "resolve_session")
				c.Abort()
				return
			}
			if session != nil {
				c.Set(ctxSession, session)
				identity = session.Identity()
			}
		}
		watch.Resolve(identity)

		clientID, err := c.Cookie(clientCookie)
		if err != nil || clientID == "" {
			clientID = uuid.New().String()
			c.SetCookie(clientCookie, clientID, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}
		c.Set(ctxClientID, clientID)

		c.Next()
	}
}

// requireAdmin rejects anything but a signed-in admin session.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		if session == nil {
			s.respondError(c, errors.NewSessionExpiredError(), "require_admin")
			c.Abort()
			return
		}
		if !session.IsAdmin {
			s.respondError(c, errors.NewForbiddenError("admin access required"), "require_admin")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func sessionFrom(c *gin.Context) *models.Session {
	if v, ok := c.Get(ctxSession); ok {
		if session, ok := v.(*models.Session); ok {
			return session
		}
	}
	return nil
}

func clientIDFrom(c *gin.Context) string {
	return c.GetString(ctxClientID)
}

// authStateFrom reads the request's auth state through a one-shot
// subscription on the watcher withSession installed. Still-loading means
// the request never went through session resolution.
func authStateFrom(c *gin.Context) authwatch.State {
	watch := watcherFrom(c)
	if watch == nil {
		return authwatch.State{Loading: true}
	}

	var state authwatch.State
	id := watch.Subscribe(func(s authwatch.State) { state = s })
	watch.Unsubscribe(id)
	return state
}

func watcherFrom(c *gin.Context) *authwatch.Observer {
	if v, ok := c.Get(ctxAuthWatch); ok {
		if watch, ok := v.(*authwatch.Observer); ok {
			return watch
		}
	}
	return nil
}
