package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                        "/",
		"/metrics":                "/metrics",
		"/properties":             "/properties",
		"/properties/12/edit":     "/properties/:id/edit",
		"/leases/7":               "/leases/:id",
		"/payments/3/delete?x=1":  "/payments/:id/delete",
		"/maintenance/new":        "/maintenance/new",
		"/owners/abc":             "/owners/abc",
		"/tenants/42/delete/":     "/tenants/:id/delete/",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, CanonicalPath(input), input)
	}
}

func TestInstrumentPassesStatusThrough(t *testing.T) {
	Init()
	h := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/owners/5", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestConfigureLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := *Logger()
	defer SetLogger(prev)

	ConfigureLogger(&buf, "json", "debug")
	Logger().Info().Str("k", "v").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "estate-web", entry["service"])
}

func TestInitBuildInfo(t *testing.T) {
	bi := InitBuildInfo("1.2.3", "abc123")
	assert.Equal(t, "1.2.3", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.NotEmpty(t, bi.GoVersion)
	assert.Equal(t, bi, CurrentBuild())

	bi = InitBuildInfo("", "")
	assert.Equal(t, "dev", bi.Version)
	assert.NotEmpty(t, bi.Commit)
}
