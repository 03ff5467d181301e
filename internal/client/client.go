// Package client is a typed HTTP client for the rentmio API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/mhsenam/rentmio/internal/routes"
	"github.com/mhsenam/rentmio/internal/utils"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// TokenListener is called whenever the client's token pair changes,
// including automatic refreshes. Empty strings mean signed out.
type TokenListener func(accessToken, refreshToken string)

type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client

	refreshMu sync.Mutex

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	onTokens     TokenListener
}

// New parses baseURL, e.g. "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid baseURL %q: scheme and host are required", baseURL)
	}
	return &Client{
		BaseURL: parsed,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = accessToken, refreshToken
	listener := c.onTokens
	c.mu.Unlock()
	if listener != nil {
		listener(accessToken, refreshToken)
	}
}

func (c *Client) Tokens() (accessToken, refreshToken string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) OnTokens(l TokenListener) {
	c.mu.Lock()
	c.onTokens = l
	c.mu.Unlock()
}

// request describes one API call. At most one of body and form is set.
type request struct {
	method string
	route  string
	query  url.Values
	body   any
	form   *multipartBody
	auth   bool
}

// do runs req and decodes a 2xx body into out. An authenticated request
// that fails with token_expired is retried once after a token refresh.
func (c *Client) do(ctx context.Context, req request, out any) error {
	used, _ := c.Tokens()
	err := c.doOnce(ctx, req, out)
	if !req.auth {
		return err
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != utils.ErrCodeTokenExpired {
		return err
	}
	if _, refresh := c.Tokens(); refresh == "" {
		return err
	}
	if rErr := c.refreshIfStale(ctx, used); rErr != nil {
		return err
	}
	return c.doOnce(ctx, req, out)
}

func (c *Client) doOnce(ctx context.Context, req request, out any) error {
	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, req.route)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var (
		reqBody     io.Reader
		contentType string
	)
	switch {
	case req.form != nil:
		buf, ct, err := req.form.encode()
		if err != nil {
			return err
		}
		reqBody, contentType = buf, ct
	case req.body != nil:
		jsonBytes, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody, contentType = bytes.NewReader(jsonBytes), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if access, _ := c.Tokens(); access != "" && req.auth {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body utils.ErrorResponse
	if err := json.Unmarshal(bodyBytes, &body); err != nil || body.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Message = strings.TrimSpace(string(bodyBytes))
		return apiErr
	}
	apiErr.Code, apiErr.Message = body.Code, body.Message
	return apiErr
}

// Health returns nil when the server and its database are reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, route: routes.Health}, nil)
}
