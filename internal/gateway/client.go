package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/obs"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaintenance   = "/requests"
	maxResponseBodyBytes = 8 << 20
)

// Options configure a Client.
type Options struct {
	BaseURL         string
	MaintenancePath string
	Timeout         time.Duration
	// HTTPClient overrides the transport; its Timeout is replaced by Timeout.
	HTTPClient *http.Client
}

// Client talks JSON to the backend REST API. It holds no per-user state:
// the caller's access token travels in the context.
type Client struct {
	base            *url.URL
	http            *http.Client
	maintenancePath string
}

// New builds a Client. BaseURL must be absolute.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway: invalid base url %q", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Timeout = timeout

	mp := strings.TrimSpace(opts.MaintenancePath)
	if mp == "" {
		mp = defaultMaintenance
	}
	if !strings.HasPrefix(mp, "/") {
		mp = "/" + mp
	}
	return &Client{base: base, http: hc, maintenancePath: mp}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) Properties() *Collection[estate.Property] {
	return &Collection[estate.Property]{c: c, resource: estate.Properties, path: "/properties",
		setID: func(p *estate.Property, id int64) { p.PropertyID = id }}
}

func (c *Client) Owners() *Collection[estate.Owner] {
	return &Collection[estate.Owner]{c: c, resource: estate.Owners, path: "/owners",
		setID: func(o *estate.Owner, id int64) { o.OwnerID = id }}
}

func (c *Client) Tenants() *Collection[estate.Tenant] {
	return &Collection[estate.Tenant]{c: c, resource: estate.Tenants, path: "/tenants",
		setID: func(t *estate.Tenant, id int64) { t.TenantID = id }}
}

func (c *Client) Leases() *Collection[estate.Lease] {
	return &Collection[estate.Lease]{c: c, resource: estate.Leases, path: "/leases",
		setID: func(l *estate.Lease, id int64) { l.LeaseID = id }}
}

func (c *Client) Payments() *Collection[estate.Payment] {
	return &Collection[estate.Payment]{c: c, resource: estate.Payments, path: "/payments",
		setID: func(p *estate.Payment, id int64) { p.PaymentID = id }}
}

func (c *Client) MaintenanceRequests() *Collection[estate.MaintenanceRequest] {
	return &Collection[estate.MaintenanceRequest]{c: c, resource: estate.Maintenance, path: c.maintenancePath,
		setID: func(m *estate.MaintenanceRequest, id int64) { m.RequestID = id }}
}

// Ping issues a GET against the properties collection. Used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, estate.Properties, "ping", http.MethodGet, "/properties", nil, nil)
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// do performs one request. out may be nil; an empty 2xx body leaves out untouched.
func (c *Client) do(ctx context.Context, resource estate.Resource, verb, method, path string, in, out any) (err error) {
	start := time.Now()
	target := c.endpoint(path)
	status := 0
	defer func() {
		outcome := outcomeOf(err)
		obs.ObserveGateway(string(resource), verb, outcome, time.Since(start))
		log := obs.Logger()
		var ev *zerolog.Event
		if err != nil {
			ev = log.Warn().Err(err)
		} else {
			ev = log.Debug()
		}
		ev.Str("resource", string(resource)).
			Str("verb", verb).
			Str("method", method).
			Str("url", target).
			Int("status", status).
			Str("outcome", outcome).
			Dur("duration", time.Since(start)).
			Msg("gateway_call")
	}()

	var body io.Reader
	if in != nil {
		data, mErr := json.Marshal(in)
		if mErr != nil {
			return fmt.Errorf("encode %s request: %w", resource, mErr)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if tok, ok := AccessTokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed("decode %s: %v", resource, err)
	}
	return nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var netErr *NetworkError
	var apiErr *APIError
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &apiErr):
		return "http_" + strconv.Itoa(apiErr.Status/100) + "xx"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	}
	return "error"
}
