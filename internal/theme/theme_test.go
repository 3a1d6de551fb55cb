package theme

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrecedence(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, Light, Load(r, ""))
	assert.Equal(t, Dark, Load(r, Dark))

	r.Header.Set(HintHeader, `"dark"`)
	assert.Equal(t, Dark, Load(r, Light))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "light"})
	assert.Equal(t, Light, Load(r, Dark), "stored preference wins over the hint")
}

func TestLoadIgnoresUnknownValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "sepia"})
	assert.Equal(t, Light, Load(r, Light))
}

func TestSaveRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	Save(rec, Dark)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, Dark, Load(r, Light))
}

func TestToggle(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Dark.Toggle())
}
