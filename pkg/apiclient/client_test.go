package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/registry"
)

func TestNew(t *testing.T) {
	client := New("http://localhost:8080/")
	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.BaseURL())
}

func TestWithToken(t *testing.T) {
	client := New("http://localhost:8080")
	tokenClient := client.WithToken("test-token")

	// Original client should not have token
	assert.Empty(t, client.token)

	// New client should have token
	assert.Equal(t, "test-token", tokenClient.token)
	assert.Equal(t, "http://localhost:8080", tokenClient.baseURL)
}

func TestSetToken(t *testing.T) {
	client := New("http://localhost:8080")
	client.SetToken("my-token")
	assert.Equal(t, "my-token", client.token)
}

func TestDoWithSuccess(t *testing.T) {
	type Response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "v=1", r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Response{Message: "success"})
	}))
	defer server.Close()

	client := New(server.URL)

	var resp Response
	err := client.get(t.Context(), "/test", map[string][]string{"v": {"1"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Message)
}

func TestDoWithAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	err := client.get(t.Context(), "/test", nil, nil)
	require.NoError(t, err)
}

func TestDoWithProblemResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"title":"Bad Request","status":400,"detail":"buffer too short","field":"hdr.len","offset":4}`))
	}))
	defer server.Close()

	err := New(server.URL).get(t.Context(), "/test", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "hdr.len", apiErr.Field)
	require.NotNil(t, apiErr.Offset)
	assert.Equal(t, 4, *apiErr.Offset)
	assert.True(t, apiErr.IsValidationError())
	assert.Contains(t, err.Error(), "buffer too short")
}

func TestDoWithPlainErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	err := New(server.URL).get(t.Context(), "/test", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Title)
	assert.Equal(t, "upstream exploded", apiErr.Detail)
}

func TestAPIErrorIs(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: http.StatusNotFound}, registry.ErrNotFound)
	assert.ErrorIs(t, &APIError{StatusCode: http.StatusRequestEntityTooLarge}, codec.ErrInputTooLarge)
	assert.NotErrorIs(t, &APIError{StatusCode: http.StatusBadRequest}, registry.ErrNotFound)

	assert.True(t, (&APIError{StatusCode: http.StatusForbidden}).IsAuthError())
	assert.False(t, (&APIError{StatusCode: http.StatusNotFound}).IsAuthError())
}
