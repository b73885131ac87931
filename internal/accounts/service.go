// Package accounts is the account lifecycle: registration, sign-in,
// sign-out, and password recovery. Identity lives in Keycloak; the signed-in
// state lives in the session store.
package accounts

import (
	"context"
	"strings"

	commonauth "github.com/Antoniofe-cpu/tempus-concierge/internal/common/auth"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/metrics"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// IdentityProvider is the slice of the Keycloak client the service needs.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (*commonauth.TokenResponse, error)
	CreateUser(ctx context.Context, user *commonauth.User) (*commonauth.User, error)
	SetPassword(ctx context.Context, userID, password string) error
	GetUserByEmail(ctx context.Context, email string) (*commonauth.User, error)
	SendPasswordResetEmail(ctx context.Context, userID string) error
	Logout(ctx context.Context, refreshToken string) error
}

// SessionStore is the slice of the session store the service needs.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) (string, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// ServiceDependencies holds the injected collaborators.
type ServiceDependencies struct {
	Provider    IdentityProvider
	Sessions    SessionStore
	AdminEmails []string
	Realm       string
	Logger      logger.Logger
}

type Service struct {
	deps ServiceDependencies
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{deps: deps}
}

// SignUpInput is a registration request.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what sign-up and sign-in hand back to the transport layer.
type AuthResult struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (s *Service) isAdmin(email string) bool {
	for _, admin := range s.deps.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func (s *Service) openSession(ctx context.Context, user *commonauth.User, refreshToken string) (*AuthResult, error) {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	session := models.Session{
		UserID:       user.ID,
		Name:         name,
		Email:        user.Email,
		IsAdmin:      s.isAdmin(user.Email),
		RefreshToken: refreshToken,
	}

	token, err := s.deps.Sessions.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = token

	metrics.ActiveSessions.WithLabelValues(s.deps.Realm).Inc()

	return &AuthResult{Token: token, Session: session}, nil
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	firstName, lastName := splitName(input.Name)

	user, err := s.deps.Provider.CreateUser(ctx, &commonauth.User{
		Email:     input.Email,
		FirstName: firstName,
		LastName:  lastName,
		Username:  input.Email,
		Enabled:   true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.deps.Provider.SetPassword(ctx, user.ID, input.Password); err != nil {
		return nil, err
	}

	tokens, err := s.deps.Provider.Login(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("Account registered", map[string]interface{}{
		"userId": user.ID,
	})

	return s.openSession(ctx, user, tokens.RefreshToken)
}

// SignIn authenticates credentials and opens a session. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	tokens, err := s.deps.Provider.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.deps.Provider.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewInvalidCredentialsError()
	}

	return s.openSession(ctx, user, tokens.RefreshToken)
}

// SignOut revokes the session and the provider's refresh token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	session, err := s.deps.Sessions.Get(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if session.RefreshToken != "" {
		if err := s.deps.Provider.Logout(ctx, session.RefreshToken); err != nil {
			s.deps.Logger.Warn("Provider logout failed", map[string]interface{}{
				"userId": session.UserID,
				"error":  err.Error(),
			})
		}
	}

	if err := s.deps.Sessions.Delete(ctx, token); err != nil {
		return err
	}

	metrics.ActiveSessions.WithLabelValues(s.deps.Realm).Dec()
	return nil
}

// RequestPasswordReset triggers the provider's reset email. To avoid account
// enumeration it succeeds even when the email is unknown.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.deps.Provider.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.deps.Logger.Debug("Password reset for unknown email", map[string]interface{}{})
		return nil
	}
	return s.deps.Provider.SendPasswordResetEmail(ctx, user.ID)
}

// Resolve maps a bearer token to its session, if any.
func (s *Service) Resolve(ctx context.Context, token string) (*models.Session, error) {
	return s.deps.Sessions.Get(ctx, token)
}
