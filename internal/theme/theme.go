// Package theme persists the light/dark preference in a client cookie.
package theme

import (
	"net/http"
	"strings"
	"time"
)

// Theme is "light" or "dark".
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// CookieName is the fixed storage key.
const CookieName = "dca-theme"

// HintHeader is the client hint carrying the OS colour-scheme preference.
const HintHeader = "Sec-CH-Prefers-Color-Scheme"

const maxAge = 365 * 24 * time.Hour

// Parse returns the theme named by s.
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Load reads the stored preference, falling back to the client hint and
// then to fallback.
func Load(r *http.Request, fallback Theme) Theme {
	if c, err := r.Cookie(CookieName); err == nil {
		if t, ok := Parse(c.Value); ok {
			return t
		}
	}
	if t, ok := Parse(strings.Trim(r.Header.Get(HintHeader), `"`)); ok {
		return t
	}
	if fallback == "" {
		return Light
	}
	return fallback
}

// Save stores t for subsequent requests.
func Save(w http.ResponseWriter, t Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(t),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Advertise asks the browser to send the colour-scheme client hint.
func Advertise(w http.ResponseWriter) {
	w.Header().Add("Accept-CH", HintHeader)
	w.Header().Add("Vary", HintHeader)
}
