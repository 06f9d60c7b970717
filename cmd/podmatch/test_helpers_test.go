package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"podmatch/internal/config"
)

type apiCall struct {
	Method string
	Path   string
	Query  string
	Body   string
	Auth   string
}

type cliTestEnv struct {
	server     *httptest.Server
	configPath string
	baseDir    string

	mu    sync.Mutex
	calls []apiCall
}

func (e *cliTestEnv) recorded() []apiCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]apiCall(nil), e.calls...)
}

// setupCLITestEnv starts a fake marketplace API and writes a config pointing
// at it. handler sees paths with the /api prefix removed.
func setupCLITestEnv(t *testing.T, handler func(w http.ResponseWriter, call apiCall)) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{baseDir: t.TempDir()}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		call := apiCall{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Auth:   r.Header.Get("Authorization"),
		}
		env.mu.Lock()
		env.calls = append(env.calls, call)
		env.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, call)
	}))
	t.Cleanup(env.server.Close)

	cfg := config.Default()
	cfg.API.BaseURL = env.server.URL + "/api"
	cfg.Session.Path = filepath.Join(env.baseDir, "session.db")
	cfg.Logging.Dir = filepath.Join(env.baseDir, "logs")
	cfg.Logging.Level = "error"

	env.configPath = filepath.Join(env.baseDir, "config.toml")
	writeTestConfig(t, env.configPath, &cfg)
	t.Setenv(config.EnvAPIURL, "")
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := "[api]\n" +
		"base_url = \"" + cfg.API.BaseURL + "\"\n" +
		"[session]\n" +
		"path = \"" + filepath.ToSlash(cfg.Session.Path) + "\"\n" +
		"[logging]\n" +
		"dir = \"" + filepath.ToSlash(cfg.Logging.Dir) + "\"\n" +
		"level = \"" + cfg.Logging.Level + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	return runCLIContext(context.Background(), env, nil, args...)
}

func runCLIContext(ctx context.Context, env *cliTestEnv, stdout io.Writer, args ...string) (string, string, error) {
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	if stdout == nil {
		stdout = &out
	}
	cmd.SetOut(stdout)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func respond(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// syncBuffer is a bytes.Buffer safe for a command writing from a poller
// goroutine while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
