package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized marks 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks 403 responses.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrTransport marks failures before a response was received.
	ErrTransport = errors.New("network error")
	// ErrValidation marks input rejected before any request was sent.
	ErrValidation = errors.New("invalid request")
	// ErrNoRefreshToken is returned when a refresh is needed but no refresh
	// token is stored.
	ErrNoRefreshToken = errors.New("no refresh token available")
)

const maxErrorBody = 4096

// HTTPError carries a non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	RequestID  string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s returned %d", e.Method, e.Path, e.StatusCode)
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Is maps well-known statuses onto the package sentinels.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Detail extracts a human readable message from the response body. It
// understands {"detail": ...}, {"message": ...}, {"error": ...} and field
// error maps such as {"username": ["already taken"]}.
func (e *HTTPError) Detail() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return body
	}
	for _, key := range []string{"detail", "message", "error"} {
		if text := flattenMessage(payload[key]); text != "" {
			return text
		}
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if text := flattenMessage(payload[key]); text != "" {
			parts = append(parts, key+": "+text)
		}
	}
	return strings.Join(parts, "; ")
}

func flattenMessage(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			if text := flattenMessage(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
