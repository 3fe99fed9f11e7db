// Package api is the outbound request path to the Lon backend. Every request
// reads the current access token from the token store just before send; a 401
// triggers at most one silent refresh-and-retry before the session is ended.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lonhq/lonboard/internal/logbook"
	"github.com/lonhq/lonboard/internal/tokenstore"
)

const (
	tokenPath        = "/api/token/"
	tokenRefreshPath = "/api/token/refresh/"

	defaultTimeout = 30 * time.Second
)

// Client wraps outbound HTTP requests to the backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  *tokenstore.Store
	log     *logbook.Logbook

	// refreshMu serializes refresh attempts so concurrent 401s share one
	// refresh call instead of racing each other.
	refreshMu sync.Mutex

	sessionMu      sync.Mutex
	onSessionEnded func()
}

// Option customizes Client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithLogbook routes request diagnostics to the given logbook.
func WithLogbook(log *logbook.Logbook) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the backend at baseURL, reading credentials from
// the given store.
func New(baseURL string, tokens *tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// OnSessionEnded registers the callback invoked when the refresh path is
// exhausted and the stored credentials have been cleared. The auth session
// uses this to force a global logout.
func (c *Client) OnSessionEnded(fn func()) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.onSessionEnded = fn
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Projects returns the project resource endpoints.
func (c *Client) Projects() *ProjectService { return &ProjectService{client: c} }

// Tasks returns the task resource endpoints.
func (c *Client) Tasks() *TaskService { return &TaskService{client: c} }

// Users returns the user resource endpoints.
func (c *Client) Users() *UserService { return &UserService{client: c} }

// Clients returns the customer resource endpoints.
func (c *Client) Clients() *ClientService { return &ClientService{client: c} }

// Auth returns the authentication endpoints.
func (c *Client) Auth() *AuthService { return &AuthService{client: c} }

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do runs the full request pipeline: encode, attach bearer, send, and on a
// 401 refresh once and retry once. Responses other than 2xx map onto the
// error taxonomy in errors.go.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		payload = encoded
	}

	access := c.tokens.Load().Access
	status, data, err := c.send(ctx, method, path, query, payload, access)
	if err != nil {
		return transportError(err)
	}

	if status == http.StatusUnauthorized && path != tokenRefreshPath {
		newAccess, refreshErr := c.refreshAccess(ctx, access)
		if refreshErr != nil {
			return refreshErr
		}
		// Retried exactly once; a second 401 ends the session with no
		// further refresh attempt.
		status, data, err = c.send(ctx, method, path, query, payload, newAccess)
		if err != nil {
			return transportError(err)
		}
		if status == http.StatusUnauthorized {
			c.endSession()
			return authError(status, "session expired")
		}
	}

	if status < 200 || status > 299 {
		return errorFromResponse(status, data)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// send performs a single HTTP exchange and returns the status and body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, access string) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Request(method, path, requestID, 0, time.Since(start), err)
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	c.log.Request(method, path, requestID, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// refreshAccess exchanges the refresh token for a new access token. Attempts
// are serialized: a waiter that arrives after another request already
// refreshed reuses the fresh token instead of issuing its own refresh call.
func (c *Client) refreshAccess(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.tokens.Load()
	if current.Access != "" && current.Access != stale {
		return current.Access, nil
	}
	if current.Refresh == "" {
		c.endSession()
		return "", authError(http.StatusUnauthorized, "no refresh token")
	}

	payload, err := json.Marshal(map[string]string{"refresh": current.Refresh})
	if err != nil {
		return "", fmt.Errorf("api: encode refresh request: %w", err)
	}
	status, data, err := c.send(ctx, http.MethodPost, tokenRefreshPath, nil, payload, "")
	if err != nil || status < 200 || status > 299 {
		c.endSession()
		return "", authError(http.StatusUnauthorized, "token refresh failed")
	}

	var refreshed struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(data, &refreshed); err != nil || refreshed.Access == "" {
		c.endSession()
		return "", authError(http.StatusUnauthorized, "token refresh returned no access token")
	}
	if err := c.tokens.SaveAccess(refreshed.Access); err != nil {
		c.log.Error("persist refreshed access token: %v", err)
	}
	c.log.Info("access token refreshed")
	return refreshed.Access, nil
}

// endSession clears stored credentials and notifies the auth session.
func (c *Client) endSession() {
	if err := c.tokens.Clear(); err != nil {
		c.log.Error("clear token store: %v", err)
	}
	c.sessionMu.Lock()
	fn := c.onSessionEnded
	c.sessionMu.Unlock()
	if fn != nil {
		fn()
	}
}
