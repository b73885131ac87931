// Package flow implements the cross-page submission workflow: staging a
// draft when sign-in interrupts a form, marking the round trip in the URL,
// and restoring the draft once the user comes back authenticated.
package flow

import (
	"net/url"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Query parameter names carried across the sign-in round trip.
const (
	paramRedirect = "redirect"
	paramFromForm = "fromForm"
	paramOrigin   = "origin"
)

// SignInPath is the page users are sent to when a form requires auth.
const SignInPath = "/accedi"

// NavigationMarker is the state encoded in the URL across the sign-in
// round trip.
type NavigationMarker struct {
	Redirect string
	FromForm bool
	Origin   models.FormKind
}

// EncodeSignInURL builds the sign-in URL carrying the marker for a form
// interrupted at path.
func EncodeSignInURL(kind models.FormKind, path string) string {
	q := url.Values{}
	q.Set(paramRedirect, path)
	q.Set(paramFromForm, "true")
	q.Set(paramOrigin, string(kind))
	return SignInPath + "?" + q.Encode()
}

// DecodeMarker reads the marker out of a query string. Missing parameters
// decode to zero values; an unknown origin decodes to an empty kind.
func DecodeMarker(query url.Values) NavigationMarker {
	marker := NavigationMarker{
		Redirect: query.Get(paramRedirect),
		FromForm: query.Get(paramFromForm) == "true",
	}
	if kind, err := models.ParseFormKind(query.Get(paramOrigin)); err == nil {
		marker.Origin = kind
	}
	return marker
}

// StripMarker removes only the three marker parameters, leaving any other
// query parameters untouched.
func StripMarker(query url.Values) url.Values {
	stripped := url.Values{}
	for key, vals := range query {
		switch key {
		case paramRedirect, paramFromForm, paramOrigin:
			continue
		default:
			stripped[key] = vals
		}
	}
	return stripped
}

// CleanURL rebuilds path plus the query with the marker removed.
func CleanURL(path string, query url.Values) string {
	stripped := StripMarker(query)
	if len(stripped) == 0 {
		return path
	}
	return path + "?" + stripped.Encode()
}
