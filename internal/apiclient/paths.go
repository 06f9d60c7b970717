package apiclient

import (
	"net/http"
	"strings"
)

// RefreshPath is the token refresh endpoint relative to the base URL.
const RefreshPath = "/users/token/refresh/"

// DefaultPublicPaths lists endpoints whose 401 responses are returned as-is.
// An entry may start with an HTTP method ("GET /podcasts/"); without one it
// applies to every method. A trailing "*" matches any suffix.
var DefaultPublicPaths = []string{
	"/users/login/",
	"/users/register/",
	"/users/verify-email/*",
	RefreshPath,
	"GET /podcasts/",
	"GET /podcasts/featured/",
	"GET /experts/",
	"GET /experts/featured/",
	"GET /experts/categories/",
}

type pathRule struct {
	method string
	path   string
	prefix bool
}

type pathMatcher struct {
	rules []pathRule
}

func newPathMatcher(entries []string) pathMatcher {
	var m pathMatcher
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var rule pathRule
		if method, path, ok := strings.Cut(entry, " "); ok {
			rule.method = strings.ToUpper(method)
			entry = strings.TrimSpace(path)
		}
		if prefix, ok := strings.CutSuffix(entry, "*"); ok {
			rule.prefix = true
			entry = prefix
		}
		rule.path = normalizePath(entry)
		m.rules = append(m.rules, rule)
	}
	return m
}

func (m pathMatcher) match(method, path string) bool {
	if method == "" {
		method = http.MethodGet
	}
	path = normalizePath(path)
	for _, rule := range m.rules {
		if rule.method != "" && rule.method != method {
			continue
		}
		if rule.prefix && strings.HasPrefix(path, rule.path) {
			return true
		}
		if !rule.prefix && path == rule.path {
			return true
		}
	}
	return false
}

// normalizePath strips any query and guarantees leading and trailing slashes.
func normalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}
