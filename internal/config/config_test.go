package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, envPrefix) {
			t.Setenv(key, "")
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, "/requests", cfg.MaintenancePath)
	assert.Equal(t, "/login", cfg.EntryPath)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.OIDCEnabled())

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "client ID")
	assert.Contains(t, warnings[1], "ESTATE_SESSION_SECRET")
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"apiBaseUrl": "https://api.example.com/v1/",
		"maintenancePath": "maintenance-requests",
		"oidc": {
			"clientID": "abc",
			"baseUrl": "https://idp.example.com/oauth2/token",
			"signInRedirectURL": "http://localhost:8080/auth/callback",
			"scope": ["openid", "profile"]
		}
	}`), 0o600))

	t.Setenv("ESTATE_CONFIG", path)
	t.Setenv("ESTATE_SESSION_SECRET", "s3cret")
	t.Setenv("ESTATE_API_TIMEOUT", "3s")
	t.Setenv("ESTATE_LISTEN_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.APIBaseURL)
	assert.Equal(t, "/maintenance-requests", cfg.MaintenancePath)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, []string{"openid", "profile"}, cfg.OIDC.Scope)
	assert.True(t, cfg.OIDCEnabled())
	assert.Empty(t, cfg.Warnings())
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("ESTATE_API_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ESTATE_API_TIMEOUT", "")
	t.Setenv("ESTATE_API_BASE_URL", "not a url")
	_, err = Load()
	assert.Error(t, err)
}

func TestEntryPathMustNotShadowRoutes(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("ESTATE_ENTRY_PATH", "signin/")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/signin", cfg.EntryPath)

	for _, p := range []string{"/", "/dashboard", "/owners", "/leases/new", "/login/oidc", "/static/x", "/{resource}"} {
		t.Setenv("ESTATE_ENTRY_PATH", p)
		_, err := Load()
		assert.Error(t, err, p)
	}
}

func TestTrustProxyIsOptIn(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TrustProxy)

	t.Setenv("ESTATE_TRUST_PROXY", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.TrustProxy)

	t.Setenv("ESTATE_TRUST_PROXY", "sometimes")
	_, err = Load()
	assert.Error(t, err)
}
