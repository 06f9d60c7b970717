package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"podmatch/internal/apiclient"
	"podmatch/internal/marketplace"
	"podmatch/internal/session"
)

func TestRenderStatusRowsAlignsAndColorsTag(t *testing.T) {
	rows := []statusRow{
		{label: "API", kind: statusInfo, message: "http://api"},
		{label: "Refresh token", kind: statusWarn, message: "no"},
	}

	plain := renderStatusRows(rows, false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("expected no ANSI codes, got %q", plain)
	}
	lines := strings.Split(strings.TrimSuffix(plain, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", plain)
	}
	if lines[0] != "  API:           [INFO] http://api" || lines[1] != "  Refresh token: [WARN] no" {
		t.Fatalf("unexpected alignment:\n%s", plain)
	}

	colored := renderStatusRows(rows[1:], true)
	requireContains(t, colored, "Refresh token: "+ansiYellow+"[WARN]"+ansiReset+" no")
}

func TestSessionSnapshotRows(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	user := session.User{ID: 1, Username: "ana", UserType: "expert"}

	cases := []struct {
		name string
		snap sessionSnapshot
		want []string
	}{
		{
			name: "logged out",
			snap: sessionSnapshot{baseURL: "http://api"},
			want: []string{"API [INFO] http://api", "Session [WARN] not logged in"},
		},
		{
			name: "valid token",
			snap: sessionSnapshot{baseURL: "http://api", user: user, hasUser: true, hasToken: true, hasRefresh: true,
				claims: session.Claims{ExpiresAt: now.Add(90 * time.Second)}},
			want: []string{"API [INFO] http://api", "Session [OK] logged in as ana (Expert)",
				"Access token [OK] expires in 1m30s", "Refresh token [OK] yes"},
		},
		{
			name: "expired without refresh",
			snap: sessionSnapshot{hasToken: true, claims: session.Claims{ExpiresAt: now.Add(-time.Minute)}},
			want: []string{"API [INFO] ", "Session [OK] logged in",
				"Access token [WARN] expired; log in again", "Refresh token [WARN] no"},
		},
		{
			name: "opaque token",
			snap: sessionSnapshot{hasToken: true, hasRefresh: true, claims: session.Claims{Opaque: true}},
			want: []string{"API [INFO] ", "Session [OK] logged in",
				"Access token [INFO] no expiry information", "Refresh token [OK] yes"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, r := range tc.snap.rows(now) {
				got = append(got, fmt.Sprintf("%s [%s] %s", r.label, statusKindLabel(r.kind), r.message))
			}
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("rows = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDisplayUserType(t *testing.T) {
	cases := map[string]string{
		"podcaster": "Podcaster",
		"EXPERT":    "Expert",
		"":          placeholder,
	}
	for in, want := range cases {
		if got := displayUserType(in); got != want {
			t.Errorf("displayUserType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := truncate("héllo\nworld", 20); got != "héllo world" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("ééééé", 3); got != "éé…" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNewerThan(t *testing.T) {
	msgs := []marketplace.Message{{ID: 1}, {ID: 2}, {ID: 3}}
	if got := newerThan(msgs, 0); len(got) != 3 {
		t.Fatalf("expected all messages, got %d", len(got))
	}
	if got := newerThan(msgs, 2); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected message 3, got %#v", got)
	}
	if got := newerThan(msgs, 3); len(got) != 0 {
		t.Fatalf("expected nothing new, got %#v", got)
	}
	if got := newerThan(msgs, 9); len(got) != 3 {
		t.Fatalf("expected full chat when id is gone, got %d", len(got))
	}
}

func TestErrorHint(t *testing.T) {
	unauthorized := &apiclient.HTTPError{Method: "GET", Path: "/users/me/", StatusCode: 401}
	if hint := errorHint(fmt.Errorf("whoami: %w", unauthorized)); !strings.Contains(hint, "auth login") {
		t.Fatalf("expected login hint, got %q", hint)
	}
	if hint := errorHint(errors.New("boom")); hint != "" {
		t.Fatalf("expected no hint, got %q", hint)
	}
}
