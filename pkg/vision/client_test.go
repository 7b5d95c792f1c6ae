package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("face", "", KeyCredential("k", "v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")

	c, err := NewClient("face", "https://example.com/", KeyCredential("k", "v"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", c.Endpoint(), "trailing slash is trimmed")
}

func TestClientSendsCredentialHeader(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Training-key")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewClient("test", srv.URL, KeyCredential("Training-key", "sekrit"))
	require.NoError(t, err)
	require.NoError(t, c.GetJSON(context.Background(), "Op", "/x", nil, &struct{}{}))
	assert.Equal(t, "sekrit", gotKey)

	c, err = NewClient("test", srv.URL, BearerCredential("tok"))
	require.NoError(t, err)
	require.NoError(t, c.GetJSON(context.Background(), "Op", "/x", nil, &struct{}{}))
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{
			name:   "not found with envelope",
			status: 404,
			body:   `{"error":{"code":"NotFound","message":"no such project"}}`,
			check:  IsNotFound,
			msg:    "NotFound: no such project",
		},
		{
			name:   "unauthorized plain body",
			status: 401,
			body:   "Access denied",
			check:  IsInvalidCredentials,
			msg:    "Access denied",
		},
		{
			name:   "throttled",
			status: 429,
			body:   `{"error":{"message":"rate limit"}}`,
			check:  IsThrottled,
			msg:    "rate limit",
		},
		{
			name:   "server error empty body",
			status: 500,
			body:   "",
			check:  IsUnavailable,
			msg:    "no response body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient("test", srv.URL, Credential{})
			require.NoError(t, err)

			err = c.GetJSON(context.Background(), "Op", "/x", nil, &struct{}{})
			require.Error(t, err)
			assert.True(t, tt.check(err), "sentinel mapping for %d", tt.status)
			assert.Contains(t, err.Error(), tt.msg)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClientUnreachableHost(t *testing.T) {
	c, err := NewClient("test", "http://127.0.0.1:1", Credential{})
	require.NoError(t, err)

	err = c.GetJSON(context.Background(), "Op", "/x", nil, &struct{}{})
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestClientPostBinary(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, 16)
		n, _ := r.Body.Read(buf)
		gotBody = buf[:n]
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewClient("test", srv.URL, Credential{})
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.PostBinary(context.Background(), "Op", "/img", nil, []byte("jpegdata"), &out))
	assert.Equal(t, "application/octet-stream", gotContentType)
	assert.Equal(t, "jpegdata", string(gotBody))
	assert.True(t, out.OK)
}

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	data, err := FetchURL(context.Background(), srv.URL+"/image.png")
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	_, err = FetchURL(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
}
