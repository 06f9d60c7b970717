package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"podmatch/internal/logging"
)

const refreshLockTimeout = 10 * time.Second

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// refresh returns a usable access token after stale was rejected. Concurrent
// callers share one in-flight exchange; the shared call is detached from any
// single caller's cancellation.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.refreshOnce(context.WithoutCancel(ctx), stale)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) refreshOnce(ctx context.Context, stale string) (string, error) {
	if l, ok := c.tokens.(locker); ok {
		lockCtx, cancel := context.WithTimeout(ctx, refreshLockTimeout)
		unlock, err := l.Lock(lockCtx)
		cancel()
		if err != nil {
			return "", fmt.Errorf("lock session: %w", err)
		}
		defer unlock()
	}

	// Another caller or process may have refreshed since stale was sent.
	current, ok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	if ok && current != stale {
		return current, nil
	}

	refreshToken, ok, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if !ok {
		return "", ErrNoRefreshToken
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("refreshing access token")

	req := Request{Method: http.MethodPost, Path: RefreshPath}
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", fmt.Errorf("marshal refresh request: %w", err)
	}
	body, err := c.send(ctx, req, payload, "")
	if err != nil {
		c.clearSession(ctx, "token refresh failed")
		return "", fmt.Errorf("refresh access token: %w", err)
	}

	var resp refreshResponse
	if err := decode(body, &resp); err != nil {
		c.clearSession(ctx, "token refresh returned malformed body")
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	access := strings.TrimSpace(resp.Access)
	if access == "" {
		c.clearSession(ctx, "token refresh returned no access token")
		return "", errors.New("refresh access token: response missing access token")
	}
	if err := c.tokens.SetTokens(ctx, access, resp.Refresh); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}
	logger.Info("access token refreshed")
	return access, nil
}
