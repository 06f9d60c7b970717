package apiclient

import "testing"

func TestHTTPErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", ""},
		{"detail", `{"detail":"Not found."}`, "Not found."},
		{"message", `{"message":"Email verified"}`, "Email verified"},
		{"error", `{"error":"Please verify your email"}`, "Please verify your email"},
		{"field errors", `{"username":["A user with that username already exists."],"email":["Enter a valid email address."]}`,
			"email: Enter a valid email address.; username: A user with that username already exists."},
		{"plain text", "Bad Gateway", "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &HTTPError{Method: "GET", Path: "/x/", StatusCode: 400, Body: []byte(tt.body)}
			if got := err.Detail(); got != tt.want {
				t.Fatalf("Detail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublicPathMatching(t *testing.T) {
	m := newPathMatcher(DefaultPublicPaths)
	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{"POST", "/users/login/", true},
		{"POST", "/users/login", true},
		{"GET", "/podcasts/", true},
		{"GET", "/podcasts/?search=go", true},
		{"", "/podcasts/", true},
		{"POST", "/podcasts/", false},
		{"PUT", "/experts/", false},
		{"GET", "/podcasts/5/", false},
		{"GET", "/podcasts/5/comments/", false},
		{"GET", "/users/verify-email/tok/", true},
		{"POST", "/users/token/refresh/", true},
		{"GET", "/users/me/", false},
		{"POST", "/experts/profiles/3/react/", false},
	}
	for _, tc := range cases {
		if got := m.match(tc.method, tc.path); got != tc.want {
			t.Errorf("match(%q, %q) = %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestPublicPathMatchingCustomEntries(t *testing.T) {
	m := newPathMatcher([]string{"get /status/", " /open/* ", ""})
	if !m.match("GET", "/status") || m.match("DELETE", "/status/") {
		t.Fatal("method-qualified entry should only match its method")
	}
	if !m.match("PATCH", "/open/a/b/") {
		t.Fatal("unqualified prefix entry should match any method")
	}
}
