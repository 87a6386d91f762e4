package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

func TestEndpointJoining(t *testing.T) {
	c := New("test", "http://localhost:8000/api/v1/", time.Second)

	tests := []struct {
		path string
		want string
	}{
		{"", "http://localhost:8000/api/v1"},
		{"/auth/login", "http://localhost:8000/api/v1/auth/login"},
		{"auth/login", "http://localhost:8000/api/v1/auth/login"},
		{"https://other.example/x", "https://other.example/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Endpoint(tt.path))
	}
}

func TestRequestsCarryRequestIDAndBearer(t *testing.T) {
	var gotRequestID, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("test", srv.URL, time.Second)
	resp, err := c.R(context.Background(), "tok").Get(c.Endpoint("/ping"))
	require.NoError(t, err)
	assert.False(t, resp.IsError())
	assert.True(t, strings.HasPrefix(gotRequestID, "req_"), "request id %q", gotRequestID)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestNoBearerWhenTokenEmpty(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("test", srv.URL, time.Second)
	_, err := c.R(context.Background(), "  ").Get(c.Endpoint("/ping"))
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestErrorFromDecodesDetailEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "email already registered"}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL, time.Second)
	resp, err := c.R(context.Background(), "").Post(c.Endpoint("/auth/signup"))
	require.NoError(t, err)
	require.True(t, resp.IsError())

	mapped := c.ErrorFrom(resp, "signup failed")
	assert.True(t, apperrors.IsKind(mapped, apperrors.KindServer))
	assert.Equal(t, "email already registered", apperrors.DetailOf(mapped))
}

func TestErrorFromNonStringDetailKeptAsJSON(t *testing.T) {
	assert.Equal(t, `[{"loc":["body","email"]}]`, decodeDetail([]byte(`{"detail": [{"loc":["body","email"]}]}`)))
	assert.Equal(t, "plain text error", decodeDetail([]byte("plain text error")))
	assert.Empty(t, decodeDetail(nil))
}

func TestUnauthorizedHookFiresOnlyWithBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "token expired"}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL, time.Second)
	fired := 0
	c.OnUnauthorized(func() { fired++ })

	// Login-style 401: no bearer, the hook must stay quiet.
	resp, err := c.R(context.Background(), "").Post(c.Endpoint("/auth/login"))
	require.NoError(t, err)
	mapped := c.ErrorFrom(resp, "login failed")
	assert.True(t, apperrors.IsKind(mapped, apperrors.KindUnauthorized))
	assert.Zero(t, fired)

	// Authenticated 401: the session is stale, the hook fires.
	resp, err = c.R(context.Background(), "stale").Get(c.Endpoint("/users/me"))
	require.NoError(t, err)
	mapped = c.ErrorFrom(resp, "profile fetch failed")
	assert.True(t, apperrors.IsKind(mapped, apperrors.KindUnauthorized))
	assert.Equal(t, 1, fired)
}
