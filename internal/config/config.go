package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"estatedesk.app/internal/estate"
)

const (
	envPrefix = "ESTATE_"

	DefaultListenAddr      = ":8080"
	DefaultAPIBaseURL      = "http://localhost:8090/api"
	DefaultMaintenancePath = "/requests"
	DefaultEntryPath       = "/login"
	DefaultAPITimeout      = 10 * time.Second
	DefaultSessionTTL      = 12 * time.Hour
)

// OIDC holds the delegated identity provider settings. Field names follow the
// JSON config file the operator edits.
type OIDC struct {
	ClientID           string   `json:"clientID"`
	ClientSecret       string   `json:"clientSecret"`
	BaseURL            string   `json:"baseUrl"`
	SignInRedirectURL  string   `json:"signInRedirectURL"`
	SignOutRedirectURL string   `json:"signOutRedirectURL"`
	Scope              []string `json:"scope"`
}

// Config is the static configuration of the web front end.
type Config struct {
	ListenAddr      string        `json:"listenAddr"`
	APIBaseURL      string        `json:"apiBaseUrl"`
	APITimeout      time.Duration `json:"-"`
	MaintenancePath string        `json:"maintenancePath"`
	EntryPath       string        `json:"entryPath"`

	SessionSecret string        `json:"-"`
	SessionTTL    time.Duration `json:"-"`
	CookieSecure  bool          `json:"cookieSecure"`
	RedisURL      string        `json:"redisUrl"`

	LoginBurst     int `json:"loginBurst"`
	LoginPerSecond int `json:"loginPerSecond"`
	// TrustProxy makes the login rate limit key on X-Forwarded-For. Enable it
	// only behind a proxy that overwrites the header.
	TrustProxy bool `json:"trustProxy"`

	LogFormat string `json:"logFormat"`
	LogLevel  string `json:"logLevel"`

	OIDC OIDC `json:"oidc"`

	generatedSecret bool
}

// Default returns the configuration used when nothing is supplied.
func Default() Config {
	return Config{
		ListenAddr:      DefaultListenAddr,
		APIBaseURL:      DefaultAPIBaseURL,
		APITimeout:      DefaultAPITimeout,
		MaintenancePath: DefaultMaintenancePath,
		EntryPath:       DefaultEntryPath,
		SessionTTL:      DefaultSessionTTL,
		LoginBurst:      10,
		LoginPerSecond:  1,
		LogFormat:       "json",
		LogLevel:        "info",
		OIDC: OIDC{
			Scope: []string{"openid", "profile", "email"},
		},
	}
}

// Load builds the configuration: defaults, then .env, then the JSON file named
// by ESTATE_CONFIG, then ESTATE_* variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	str("LISTEN_ADDR", &c.ListenAddr)
	str("API_BASE_URL", &c.APIBaseURL)
	str("MAINTENANCE_PATH", &c.MaintenancePath)
	str("ENTRY_PATH", &c.EntryPath)
	str("SESSION_SECRET", &c.SessionSecret)
	str("REDIS_URL", &c.RedisURL)
	str("LOG_FORMAT", &c.LogFormat)
	str("LOG_LEVEL", &c.LogLevel)
	str("OIDC_CLIENT_ID", &c.OIDC.ClientID)
	str("OIDC_CLIENT_SECRET", &c.OIDC.ClientSecret)
	str("OIDC_BASE_URL", &c.OIDC.BaseURL)
	str("OIDC_REDIRECT_URL", &c.OIDC.SignInRedirectURL)
	str("OIDC_SIGNOUT_REDIRECT_URL", &c.OIDC.SignOutRedirectURL)
	if v := strings.TrimSpace(getenv(envPrefix + "OIDC_SCOPE")); v != "" {
		c.OIDC.Scope = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	durations := map[string]*time.Duration{
		"API_TIMEOUT": &c.APITimeout,
		"SESSION_TTL": &c.SessionTTL,
	}
	for key, dst := range durations {
		v := strings.TrimSpace(getenv(envPrefix + key))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s%s: invalid duration %q", envPrefix, key, v)
		}
		*dst = d
	}

	ints := map[string]*int{
		"LOGIN_BURST":      &c.LoginBurst,
		"LOGIN_PER_SECOND": &c.LoginPerSecond,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(getenv(envPrefix + key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s%s: invalid positive integer %q", envPrefix, key, v)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"COOKIE_SECURE": &c.CookieSecure,
		"TRUST_PROXY":   &c.TrustProxy,
	}
	for key, dst := range bools {
		v := strings.TrimSpace(getenv(envPrefix + key))
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
	}
	return nil
}

func (c *Config) finalize() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("apiBaseUrl must be an absolute URL, got %q", c.APIBaseURL)
	}
	c.MaintenancePath = normalizePath(c.MaintenancePath, DefaultMaintenancePath)
	c.EntryPath = normalizePath(c.EntryPath, DefaultEntryPath)
	if err := checkEntryPath(c.EntryPath); err != nil {
		return err
	}
	if c.APITimeout <= 0 {
		c.APITimeout = DefaultAPITimeout
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		c.SessionSecret = hex.EncodeToString(buf)
		c.generatedSecret = true
	}
	return nil
}

func normalizePath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// reservedPaths are served by fixed routes and cannot double as the entry page.
var reservedPaths = map[string]bool{
	"/":              true,
	"/dashboard":     true,
	"/logout":        true,
	"/healthz":       true,
	"/readyz":        true,
	"/metrics":       true,
	"/login/oidc":    true,
	"/login/demo":    true,
	"/auth/callback": true,
}

// checkEntryPath rejects entry paths that would collide with another route.
func checkEntryPath(p string) error {
	if strings.ContainsAny(p, "{}?# \t") || strings.HasPrefix(p, "/static/") || reservedPaths[p] {
		return fmt.Errorf("entryPath %q collides with a built-in route", p)
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if _, ok := estate.ParseResource(first); ok {
		return fmt.Errorf("entryPath %q collides with the %s pages", p, first)
	}
	return nil
}

// OIDCEnabled reports whether delegated sign-in can be offered.
func (c Config) OIDCEnabled() bool {
	return strings.TrimSpace(c.OIDC.ClientID) != "" && strings.TrimSpace(c.OIDC.BaseURL) != ""
}

// Warnings lists operator-facing problems that do not prevent startup.
func (c Config) Warnings() []string {
	var out []string
	if strings.TrimSpace(c.OIDC.ClientID) == "" {
		out = append(out, "Identity provider client ID is not configured. Set oidc.clientID in the config file or ESTATE_OIDC_CLIENT_ID to enable sign-in with the identity provider.")
	} else if strings.TrimSpace(c.OIDC.BaseURL) == "" {
		out = append(out, "Identity provider base URL is not configured. Set oidc.baseUrl or ESTATE_OIDC_BASE_URL.")
	}
	if c.generatedSecret {
		out = append(out, "ESTATE_SESSION_SECRET is not set; a random secret was generated and sessions will not survive a restart.")
	}
	return out
}
