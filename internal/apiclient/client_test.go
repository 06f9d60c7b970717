package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"podmatch/internal/apiclient"
	"podmatch/internal/session"
)

type recordedRequest struct {
	Method string
	URL    string
	Body   string
	Header http.Header
}

func newSession(t *testing.T, access, refresh string) *session.Session {
	t.Helper()
	kv := session.NewMemoryKV()
	ctx := context.Background()
	for key, value := range map[string]string{
		session.KeyAccessToken:  access,
		session.KeyRefreshToken: refresh,
		session.KeyUserData:     `{"id":1,"username":"ana"}`,
		session.KeyUserType:     "podcaster",
	} {
		if value == "" {
			continue
		}
		if err := kv.Set(ctx, key, value); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	return session.New(kv)
}

func newClient(t *testing.T, server *httptest.Server, sess *session.Session) *apiclient.Client {
	t.Helper()
	client, err := apiclient.New(server.URL+"/api", sess, apiclient.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func assertCleared(t *testing.T, sess *session.Session) {
	t.Helper()
	ctx := context.Background()
	if sess.Authenticated(ctx) {
		t.Fatal("expected access token to be cleared")
	}
	if _, ok, _ := sess.RefreshToken(ctx); ok {
		t.Fatal("expected refresh token to be cleared")
	}
	if _, ok, _ := sess.User(ctx); ok {
		t.Fatal("expected user data to be cleared")
	}
	if _, ok, _ := sess.UserType(ctx); ok {
		t.Fatal("expected user type to be cleared")
	}
}

func TestDoAttachesBearerAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected request id header")
		}
		if got := r.URL.Query().Get("search"); got != "tech" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"title":"Deep Dive"}`))
	}))
	defer server.Close()

	client := newClient(t, server, newSession(t, "access-1", "refresh-1"))
	var out struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	if err := client.Get(context.Background(), "/podcasts/3/", url.Values{"search": {"tech"}}, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.ID != 3 || out.Title != "Deep Dive" {
		t.Fatalf("unexpected decoded body: %#v", out)
	}
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no authorization header, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newClient(t, server, newSession(t, "", ""))
	var out []any
	if err := client.Get(context.Background(), "/podcasts/", nil, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
}

func TestRetryReplaysIdenticalRequest(t *testing.T) {
	var (
		mu        sync.Mutex
		protected []recordedRequest
		refreshes int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/api/users/token/refresh/":
			refreshes++
			if string(body) != `{"refresh":"refresh-1"}` {
				t.Errorf("unexpected refresh body: %s", body)
			}
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("refresh call should not carry a bearer token, got %q", got)
			}
			_, _ = w.Write([]byte(`{"access":"access-2"}`))
		case "/api/podcasts/5/comments/":
			protected = append(protected, recordedRequest{
				Method: r.Method,
				URL:    r.URL.String(),
				Body:   string(body),
				Header: r.Header.Clone(),
			})
			if r.Header.Get("Authorization") != "Bearer access-2" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":99}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sess := newSession(t, "access-1", "refresh-1")
	client := newClient(t, server, sess)

	var out struct {
		ID int `json:"id"`
	}
	req := apiclient.Request{
		Method: http.MethodPost,
		Path:   "/podcasts/5/comments/",
		Query:  url.Values{"page": {"2"}},
		Body:   map[string]string{"content": "great episode"},
	}
	if err := client.Do(context.Background(), req, &out); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if out.ID != 99 {
		t.Fatalf("expected decoded retry response, got %#v", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", refreshes)
	}
	if len(protected) != 2 {
		t.Fatalf("expected original and retry, got %d requests", len(protected))
	}
	first, retry := protected[0], protected[1]
	if first.Method != retry.Method || first.URL != retry.URL || first.Body != retry.Body {
		t.Fatalf("retry differs from original: %#v vs %#v", first, retry)
	}
	if first.Header.Get("Authorization") != "Bearer access-1" || retry.Header.Get("Authorization") != "Bearer access-2" {
		t.Fatalf("unexpected bearer headers: %q then %q", first.Header.Get("Authorization"), retry.Header.Get("Authorization"))
	}
	for _, header := range []string{"Content-Type", "Accept", "User-Agent", "X-Request-Id"} {
		if first.Header.Get(header) != retry.Header.Get(header) {
			t.Fatalf("header %s changed on retry: %q vs %q", header, first.Header.Get(header), retry.Header.Get(header))
		}
	}

	access, _, _ := sess.AccessToken(context.Background())
	if access != "access-2" {
		t.Fatalf("expected refreshed token to be persisted, got %q", access)
	}
	if refresh, _, _ := sess.RefreshToken(context.Background()); refresh != "refresh-1" {
		t.Fatalf("expected refresh token to be kept, got %q", refresh)
	}
}

func TestRefreshEndpointUnauthorizedClearsWithoutNestedRefresh(t *testing.T) {
	var refreshes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/token/refresh/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		refreshes.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token is blacklisted"}`))
	}))
	defer server.Close()

	sess := newSession(t, "access-1", "refresh-1")
	client := newClient(t, server, sess)

	err := client.Post(context.Background(), apiclient.RefreshPath, map[string]string{"refresh": "refresh-1"}, nil)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected exactly one call to the refresh endpoint, got %d", got)
	}
	assertCleared(t, sess)
}

func TestFailedRefreshClearsSessionAndReturnsRefreshError(t *testing.T) {
	var protectedCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/token/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
		default:
			protectedCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	sess := newSession(t, "access-1", "refresh-1")
	client := newClient(t, server, sess)

	err := client.Get(context.Background(), "/users/me/", nil, nil)
	var httpErr *apiclient.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Path != apiclient.RefreshPath {
		t.Fatalf("expected refresh failure to propagate, got error for %s", httpErr.Path)
	}
	if httpErr.Detail() != "Token is invalid or expired" {
		t.Fatalf("unexpected detail %q", httpErr.Detail())
	}
	if got := protectedCalls.Load(); got != 1 {
		t.Fatalf("expected no replay after failed refresh, got %d calls", got)
	}
	assertCleared(t, sess)
}

func TestMissingRefreshTokenPropagatesOriginalFailure(t *testing.T) {
	var refreshes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/token/refresh/" {
			refreshes.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sess := newSession(t, "access-1", "")
	client := newClient(t, server, sess)

	err := client.Get(context.Background(), "/bookmarks/", nil, nil)
	var httpErr *apiclient.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Path != "/bookmarks/" {
		t.Fatalf("expected original 401, got %v", err)
	}
	if refreshes.Load() != 0 {
		t.Fatal("refresh endpoint should not be called without a refresh token")
	}
	if !sess.Authenticated(context.Background()) {
		t.Fatal("session should be left intact when no refresh was attempted")
	}
}

func TestPublicPathUnauthorizedSkipsRefresh(t *testing.T) {
	var refreshes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/token/refresh/" {
			refreshes.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	}))
	defer server.Close()

	sess := newSession(t, "access-1", "refresh-1")
	client := newClient(t, server, sess)

	for _, path := range []string{"/users/login/", "/users/verify-email/abc123/"} {
		err := client.Post(context.Background(), path, map[string]string{}, nil)
		if !errors.Is(err, apiclient.ErrUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", path, err)
		}
	}
	if err := client.Get(context.Background(), "/experts/featured/", nil, nil); !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if refreshes.Load() != 0 {
		t.Fatalf("public paths must not trigger refresh, got %d", refreshes.Load())
	}
	if !sess.Authenticated(context.Background()) {
		t.Fatal("session should be intact")
	}
}

func TestListingPathIsPublicOnlyForReads(t *testing.T) {
	var refreshes, creates atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/users/token/refresh/":
			refreshes.Add(1)
			_, _ = w.Write([]byte(`{"access":"fresh"}`))
		case r.URL.Path == "/api/podcasts/" && r.Header.Get("Authorization") != "Bearer fresh":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
		case r.URL.Path == "/api/podcasts/" && r.Method == http.MethodPost:
			creates.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":8}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	getClient := newClient(t, server, newSession(t, "stale", "refresh-1"))
	if err := getClient.Get(context.Background(), "/podcasts/", nil, nil); !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected listing 401 to pass through, got %v", err)
	}
	if got := refreshes.Load(); got != 0 {
		t.Fatalf("listing read must not refresh, got %d refreshes", got)
	}

	sess := newSession(t, "stale", "refresh-1")
	postClient := newClient(t, server, sess)
	var out struct {
		ID int `json:"id"`
	}
	if err := postClient.Post(context.Background(), "/podcasts/", map[string]string{"title": "New Show"}, &out); err != nil {
		t.Fatalf("create should refresh and replay, got %v", err)
	}
	if out.ID != 8 || refreshes.Load() != 1 || creates.Load() != 1 {
		t.Fatalf("unexpected result id=%d refreshes=%d creates=%d", out.ID, refreshes.Load(), creates.Load())
	}
	if token, _, _ := sess.AccessToken(context.Background()); token != "fresh" {
		t.Fatalf("expected stored access token to be replaced, got %q", token)
	}
}

func TestRetryHappensAtMostOnce(t *testing.T) {
	var protectedCalls, refreshes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/token/refresh/" {
			refreshes.Add(1)
			_, _ = w.Write([]byte(`{"access":"access-2"}`))
			return
		}
		protectedCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newClient(t, server, newSession(t, "access-1", "refresh-1"))
	err := client.Get(context.Background(), "/user_messages/conversations/", nil, nil)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after single retry, got %v", err)
	}
	if protectedCalls.Load() != 2 || refreshes.Load() != 1 {
		t.Fatalf("expected 2 protected calls and 1 refresh, got %d and %d", protectedCalls.Load(), refreshes.Load())
	}
}

func TestConcurrentUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	var refreshes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/token/refresh/" {
			refreshes.Add(1)
			time.Sleep(50 * time.Millisecond)
			_, _ = w.Write([]byte(`{"access":"access-2"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newClient(t, server, newSession(t, "access-1", "refresh-1"))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- client.Get(context.Background(), "/users/me/", nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected a single shared refresh, got %d", got)
	}
}

func TestNonUnauthorizedStatusesPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/experts/my-profile/":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		case "/api/users/login/":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Please verify your email"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	sess := newSession(t, "access-1", "refresh-1")
	client := newClient(t, server, sess)
	ctx := context.Background()

	if err := client.Get(ctx, "/experts/my-profile/", nil, nil); !errors.Is(err, apiclient.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	err := client.Post(ctx, "/users/login/", map[string]string{"username": "ana"}, nil)
	if !errors.Is(err, apiclient.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if apiclient.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", apiclient.StatusCode(err))
	}
	if err := client.Get(ctx, "/podcasts/", nil, nil); apiclient.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if !sess.Authenticated(ctx) {
		t.Fatal("non-401 failures must not clear the session")
	}
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportErrorsAreMarked(t *testing.T) {
	client, err := apiclient.New("http://example.invalid/api", newSession(t, "a", "r"), apiclient.WithHTTPClient(failingDoer{}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.Get(context.Background(), "/podcasts/", nil, nil)
	if !errors.Is(err, apiclient.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := apiclient.New("", session.New(nil)); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := apiclient.New("http://localhost", nil); err == nil {
		t.Fatal("expected error for nil token store")
	}
}
