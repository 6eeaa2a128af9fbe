package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticToken(token string) func() string {
	return func() string { return token }
}

func TestClient_NoToken_ShortCircuits(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken(""))

	var out map[string]any
	err := client.JSON(context.Background(), http.MethodGet, "/feedback/", nil, &out)

	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, int32(0), hits.Load(), "no request should reach the API without a token")
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token-123"))

	var out map[string]any
	err := client.JSON(context.Background(), http.MethodGet, "/users/me", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)
}

func TestClient_PublicRequest_SendsNoAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token-123"))

	var out []any
	err := client.PublicJSON(context.Background(), http.MethodGet, "/teams/", nil, &out)

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Unauthorized_InvokesHandlerOncePerCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var invalidations atomic.Int32
	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("stale-token"))
	client.SetUnauthorizedHandler(func() { invalidations.Add(1) })

	var out map[string]any
	err := client.JSON(context.Background(), http.MethodGet, "/users/me", nil, &out)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), invalidations.Load())

	err = client.JSON(context.Background(), http.MethodGet, "/users/me", nil, &out)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(2), invalidations.Load(), "each failed call invalidates exactly once")
}

func TestClient_APIError_CarriesDetailVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Not authorized to acknowledge this feedback"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token"))

	err := client.JSON(context.Background(), http.MethodPatch, "/feedback/1/acknowledge", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Not authorized to acknowledge this feedback", apiErr.Detail)
	assert.Equal(t, "Not authorized to acknowledge this feedback", apiErr.Error())
}

func TestClient_APIError_GenericWhenBodyUnparsable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>nope</html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token"))

	err := client.JSON(context.Background(), http.MethodGet, "/feedback/", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "an unknown API error occurred", apiErr.Detail)
}

func TestClient_NoContent_IsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token"))

	out := map[string]string{"untouched": "yes"}
	err := client.JSON(context.Background(), http.MethodPost, "/feedback/request", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "yes", out["untouched"], "204 must leave the target untouched")
}

func TestClient_Binary_ReturnsRawPayload(t *testing.T) {
	payload := []byte("%PDF-1.4 report bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token"))

	data, err := client.Binary(context.Background(), http.MethodGet, "/feedback/export/pdf")

	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestClient_NetworkError_Propagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL)
	client.SetTokenSource(staticToken("token"))

	err := client.JSON(context.Background(), http.MethodGet, "/feedback/", nil, nil)

	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
	assert.NotErrorIs(t, err, ErrNoSession)
	assert.NotErrorIs(t, err, ErrSessionExpired)
}
