package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedesk.app/internal/estate"
)

func newTestClient(t *testing.T, h http.Handler, opts ...func(*Options)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	o := Options{BaseURL: srv.URL + "/api"}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := New(o)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "/api"})
	assert.Error(t, err)
}

func TestListDecodesAndForwardsToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"propertyId":1,"addressLine1":"12 Lake Rd","city":"Kandy","rentAmount":150000,"ownerId":null}]`)
	}))

	ctx := WithAccessToken(context.Background(), "tok-123")
	props, err := c.Properties().List(ctx)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, int64(1), props[0].PropertyID)
	assert.Nil(t, props[0].OwnerID)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/properties", gotPath)
}

func TestListWithoutTokenSendsNoAuthorization(t *testing.T) {
	var hadAuth bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		_, _ = io.WriteString(w, `null`)
	}))
	owners, err := c.Owners().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, owners)
	assert.NotNil(t, owners)
	assert.False(t, hadAuth)
}

func TestMaintenancePathIsConfigurable(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `[]`)
	})

	c := newTestClient(t, handler)
	_, err := c.MaintenanceRequests().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/requests", gotPath)

	c = newTestClient(t, handler, func(o *Options) { o.MaintenancePath = "maintenance-requests" })
	_, err = c.MaintenanceRequests().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/maintenance-requests", gotPath)
}

func TestCreateSendsNullForAbsentOptionals(t *testing.T) {
	var body map[string]any
	var method string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"leaseId":42,"propertyId":1,"tenantId":2,"startDate":"2025-01-01T00:00:00.000Z","endDate":"2026-01-01T00:00:00.000Z","monthlyRent":1000}`)
	}))

	start, _ := estate.ParseTimestamp("2025-01-01")
	end, _ := estate.ParseTimestamp("2026-01-01")
	created, err := c.Leases().Create(context.Background(), estate.Lease{
		PropertyID: 1, TenantID: 2, StartDate: start, EndDate: end, MonthlyRent: 1000, Status: "Active",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.LeaseID)
	assert.Equal(t, http.MethodPost, method)

	v, ok := body["securityDeposit"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", body["startDate"])
}

func TestUpdateSetsIdentifierAndAcceptsEmptyBody(t *testing.T) {
	var body estate.Owner
	var path, method string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	}))

	out, err := c.Owners().Update(context.Background(), 7, estate.Owner{FirstName: "Ann", LastName: "Perera", Email: "a@b.lk"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/owners/7", path)
	assert.Equal(t, int64(7), body.OwnerID)
	assert.Equal(t, int64(7), out.OwnerID)
}

func TestDeleteIssuesSingleCall(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/payments/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, c.Payments().Delete(context.Background(), 9))
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	}))
	_, err := c.Tenants().List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "token expired")
}

func TestServerErrorIsAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.Properties().Get(context.Background(), 3)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "500")
}

func TestMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"not json":    `<html>oops</html>`,
		"wrong shape": `{"propertyId":1}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, payload)
			}))
			_, err := c.Properties().List(context.Background())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestListSkipsInvalidRecords(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"leaseId":1,"propertyId":1,"tenantId":1,"startDate":"2025-01-01","endDate":"2026-01-01","monthlyRent":100,"status":"Active"},
			{"leaseId":2,"propertyId":1,"tenantId":2,"startDate":"2025-01-01","endDate":"2025-01-01","monthlyRent":100,"status":"Active"},
			{"leaseId":3,"propertyId":1,"tenantId":3,"startDate":"2025-01-01","endDate":"2026-01-01","monthlyRent":-5,"status":"Active"},
			{"leaseId":4,"propertyId":2,"tenantId":4,"startDate":"2025-03-01","endDate":"2026-03-01","monthlyRent":200,"status":"Active"}
		]`)
	}))
	leases, err := c.Leases().List(context.Background())
	require.NoError(t, err)
	require.Len(t, leases, 2)
	assert.Equal(t, int64(1), leases[0].LeaseID)
	assert.Equal(t, int64(4), leases[1].LeaseID)
}

func TestGetRejectsInvalidRecord(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"propertyId":4,"rentAmount":-1}`)
	}))
	_, err := c.Properties().Get(context.Background(), 4)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAPIErrorTruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", 199) + strings.Repeat("é", 10)
	msg := (&APIError{Status: http.StatusBadRequest, Body: body}).Error()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, strings.Repeat("a", 199)+"…"))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url})
	require.NoError(t, err)
	_, err = c.Owners().List(context.Background())
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.MethodGet, netErr.Method)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), func(o *Options) { o.Timeout = 50 * time.Millisecond })
	defer close(release)

	_, err := c.Owners().List(context.Background())
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestCanceledContextWrapsCause(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Owners().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
