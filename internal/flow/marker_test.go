package flow

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// ==========================
// Encode / Decode
// ==========================

func TestEncodeSignInURL(t *testing.T) {
	raw := EncodeSignInURL(models.KindSellForm, "/vendi")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, SignInPath, parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "/vendi", q.Get("redirect"))
	assert.Equal(t, "true", q.Get("fromForm"))
	assert.Equal(t, "sellForm", q.Get("origin"))
}

func TestDecodeMarker_RoundTrip(t *testing.T) {
	raw := EncodeSignInURL(models.KindRepairForm, "/ripara")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	marker := DecodeMarker(parsed.Query())

	assert.Equal(t, "/ripara", marker.Redirect)
	assert.True(t, marker.FromForm)
	assert.Equal(t, models.KindRepairForm, marker.Origin)
}

func TestDecodeMarker_ToleratesAbsence(t *testing.T) {
	marker := DecodeMarker(url.Values{})

	assert.Empty(t, marker.Redirect)
	assert.False(t, marker.FromForm)
	assert.Empty(t, marker.Origin)
}

func TestDecodeMarker_UnknownOriginIgnored(t *testing.T) {
	q := url.Values{}
	q.Set("origin", "somethingElse")
	q.Set("fromForm", "true")

	marker := DecodeMarker(q)

	assert.True(t, marker.FromForm)
	assert.Empty(t, marker.Origin)
}

// ==========================
// Strip
// ==========================

func TestStripMarker_RemovesOnlyMarkerParams(t *testing.T) {
	q := url.Values{}
	q.Set("redirect", "/vendi")
	q.Set("fromForm", "true")
	q.Set("origin", "sellForm")
	q.Set("utm_source", "newsletter")

	stripped := StripMarker(q)

	assert.Empty(t, stripped.Get("redirect"))
	assert.Empty(t, stripped.Get("fromForm"))
	assert.Empty(t, stripped.Get("origin"))
	assert.Equal(t, "newsletter", stripped.Get("utm_source"))
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		expected string
	}{
		{
			name:     "marker only",
			path:     "/vendi",
			rawQuery: "fromForm=true&origin=sellForm&redirect=%2Fvendi",
			expected: "/vendi",
		},
		{
			name:     "marker plus other params",
			path:     "/vendi",
			rawQuery: "fromForm=true&origin=sellForm&tab=dettagli",
			expected: "/vendi?tab=dettagli",
		},
		{
			name:     "no query at all",
			path:     "/ripara",
			rawQuery: "",
			expected: "/ripara",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.rawQuery)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, CleanURL(tt.path, q))
		})
	}
}
