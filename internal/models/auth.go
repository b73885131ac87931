package models

import "time"

// Identity is the authenticated-user capability exposed by the auth provider.
// The submission flow only cares about presence; name and email are used to
// pre-fill form fields.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Present reports whether an identity is attached at all.
func (i Identity) Present() bool {
	return i.ID != ""
}

// Session represents a signed-in client session.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"isAdmin,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// IsExpired checks if session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Identity projects the session onto the flow's identity capability.
func (s *Session) Identity() Identity {
	if s == nil {
		return Identity{}
	}
	return Identity{ID: s.UserID, Name: s.Name, Email: s.Email}
}
