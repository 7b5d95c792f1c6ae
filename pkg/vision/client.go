// Package vision provides shared plumbing for the cloud vision service
// clients: API-key authentication, request execution, and a common error
// taxonomy.
//
// Each service client (customvision, face, imageanalysis, openai) embeds a
// *Client and layers its own endpoints and payload types on top.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request round-trip.
//
// Watch loops rely on poll calls eventually returning; a zero timeout would
// let a hung connection block a watch forever.
const DefaultTimeout = 60 * time.Second

// Credential supplies the authentication header for each request.
//
// The vision services authenticate with a per-service API key header
// ("Training-key", "Prediction-key", "Ocp-Apim-Subscription-Key") or a
// bearer token.
type Credential struct {
	// Header is the header name the key is sent in.
	Header string

	// Key is the secret value.
	Key string
}

// KeyCredential returns a Credential that sends key in the given header.
func KeyCredential(header, key string) Credential {
	return Credential{Header: header, Key: key}
}

// BearerCredential returns a Credential that sends an Authorization bearer token.
func BearerCredential(token string) Credential {
	return Credential{Header: "Authorization", Key: "Bearer " + token}
}

func (c Credential) apply(req *http.Request) {
	if c.Header != "" && c.Key != "" {
		req.Header.Set(c.Header, c.Key)
	}
}

// Client executes authenticated requests against a single service endpoint.
type Client struct {
	endpoint   string
	service    string
	credential Credential
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Used by tests to
// point at a local fake service.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the given endpoint.
//
// The endpoint is the service base URL (e.g.
// https://myresource.cognitiveservices.azure.com). A trailing slash is
// tolerated.
func NewClient(service, endpoint string, cred Credential, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("%s: endpoint is required", service)
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("%s: invalid endpoint: %w", service, err)
	}

	c := &Client{
		endpoint:   endpoint,
		service:    service,
		credential: cred,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, "", nil, out)
}

// PostJSON issues a POST with a JSON body (nil for empty) and decodes the
// JSON response into out (nil to discard).
func (c *Client) PostJSON(ctx context.Context, op, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &APIError{Op: op, Service: c.service, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, op, http.MethodPost, path, query, "application/json", body, out)
}

// PostBinary issues a POST with a raw octet-stream body (typically image
// bytes) and decodes the JSON response into out.
func (c *Client) PostBinary(ctx context.Context, op, path string, query url.Values, data []byte, out any) error {
	return c.do(ctx, op, http.MethodPost, path, query, "application/octet-stream", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &APIError{Op: op, Service: c.service, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.credential.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Op: op, Service: c.service, Err: fmt.Errorf("%w: %v", ErrServiceUnavailable, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Op:         op,
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", statusErr(resp.StatusCode), readErrorBody(resp.Body)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: op, Service: c.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readErrorBody extracts a short diagnostic from an error response.
//
// The services return a JSON envelope like {"error":{"code":..,"message":..}}
// but plain text also occurs; fall back to the raw (truncated) body.
func readErrorBody(r io.Reader) string {
	const maxErrBody = 512

	data, err := io.ReadAll(io.LimitReader(r, maxErrBody))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
		if envelope.Error.Code != "" {
			return envelope.Error.Code + ": " + envelope.Error.Message
		}
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(data))
}
