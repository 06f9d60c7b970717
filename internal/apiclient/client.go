package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"podmatch/internal/logging"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "podmatch"
	maxResponseBody  = 8 << 20
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenStore is the credential state the client reads and updates.
// *session.Session satisfies it.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, bool, error)
	RefreshToken(ctx context.Context) (string, bool, error)
	SetTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// locker is implemented by stores that can serialize refreshes across
// processes.
type locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Request describes one API call. Path is relative to the base URL. Body is
// encoded as JSON once so a retry replays the same bytes.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPublicPaths replaces the allow-list of endpoints that never trigger a
// refresh. Entries use the DefaultPublicPaths format.
func WithPublicPaths(paths ...string) Option {
	return func(c *Client) {
		c.public = newPathMatcher(paths)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// Client performs authenticated requests against the marketplace API.
type Client struct {
	baseURL   string
	http      HTTPDoer
	tokens    TokenStore
	logger    *slog.Logger
	userAgent string
	public    pathMatcher

	refreshGroup singleflight.Group
}

// New builds a Client rooted at baseURL.
func New(baseURL string, tokens TokenStore, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	if tokens == nil {
		return nil, errors.New("apiclient: token store is required")
	}
	c := &Client{
		baseURL:   trimmed,
		tokens:    tokens,
		userAgent: defaultUserAgent,
		public:    newPathMatcher(DefaultPublicPaths),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	c.logger = logging.NewComponentLogger(c.logger, "apiclient")
	return c, nil
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get is shorthand for a GET Do.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post is shorthand for a POST Do.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put is shorthand for a PUT Do.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete is shorthand for a DELETE Do. body may be nil.
func (c *Client) Delete(ctx context.Context, path string, body any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Body: body}, nil)
}

// Do sends req and decodes a JSON response into out when out is non-nil.
//
// A 401 on a protected path triggers one refresh and one replay. A 401 on the
// refresh endpoint itself clears the session without a nested refresh.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if !strings.HasPrefix(req.Path, "/") {
		req.Path = "/" + req.Path
	}

	var payload []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	token, _, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}

	body, err := c.send(ctx, req, payload, token)
	if err == nil {
		return decode(body, out)
	}
	if StatusCode(err) != http.StatusUnauthorized {
		return err
	}

	if normalizePath(req.Path) == RefreshPath {
		c.clearSession(ctx, "refresh endpoint rejected credentials")
		return err
	}
	if c.public.match(req.Method, req.Path) {
		return err
	}

	fresh, refreshErr := c.refresh(ctx, token)
	if refreshErr != nil {
		if errors.Is(refreshErr, ErrNoRefreshToken) {
			return err
		}
		return refreshErr
	}

	body, err = c.send(ctx, req, payload, fresh)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) send(ctx context.Context, req Request, payload []byte, token string) ([]byte, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	requestID, _ := logging.RequestIDFromContext(ctx)
	if requestID != "" {
		httpReq.Header.Set("X-Request-Id", requestID)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger := logging.WithContext(ctx, c.logger)
	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Debug("api request failed",
			logging.String("method", req.Method),
			logging.String("path", req.Path),
			logging.Duration("duration", time.Since(start)),
			logging.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	logger.Debug("api request",
		logging.String("method", req.Method),
		logging.String("path", req.Path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
		logging.Bool("authenticated", token != ""),
	)

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       bodyBytes,
			RequestID:  requestID,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	return data, nil
}

func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) clearSession(ctx context.Context, reason string) {
	logger := logging.WithContext(ctx, c.logger)
	if err := c.tokens.Clear(ctx); err != nil {
		logger.Warn("failed to clear session",
			logging.String(logging.FieldEventType, "session_clear_failed"),
			logging.String("reason", reason),
			logging.Error(err),
		)
		return
	}
	logger.Info("session cleared", logging.String("reason", reason))
}
