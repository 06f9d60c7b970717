package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"podmatch/internal/session"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// sessionSnapshot is everything `auth status` reports, read from local
// storage only.
type sessionSnapshot struct {
	baseURL    string
	user       session.User
	hasUser    bool
	claims     session.Claims
	hasToken   bool
	hasRefresh bool
}

func loadSessionSnapshot(ctx context.Context, baseURL string, sess *session.Session) (sessionSnapshot, error) {
	snap := sessionSnapshot{baseURL: baseURL}
	var err error
	if snap.user, snap.hasUser, err = sess.User(ctx); err != nil {
		return snap, err
	}
	if snap.claims, snap.hasToken, err = sess.AccessClaims(ctx); err != nil {
		return snap, err
	}
	if _, snap.hasRefresh, err = sess.RefreshToken(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

type statusRow struct {
	label   string
	kind    statusKind
	message string
}

// rows lists API, session, token expiry and refresh token. Token rows are
// omitted when no one is logged in.
func (s sessionSnapshot) rows(now time.Time) []statusRow {
	rows := []statusRow{{label: "API", kind: statusInfo, message: s.baseURL}}

	switch {
	case !s.hasToken:
		return append(rows, statusRow{label: "Session", kind: statusWarn, message: "not logged in"})
	case s.hasUser:
		msg := fmt.Sprintf("logged in as %s (%s)", s.user.Username, displayUserType(s.user.UserType))
		rows = append(rows, statusRow{label: "Session", kind: statusOK, message: msg})
	default:
		rows = append(rows, statusRow{label: "Session", kind: statusOK, message: "logged in"})
	}

	expiry := statusRow{label: "Access token"}
	switch {
	case s.claims.Opaque, !s.claims.HasExpiry():
		expiry.kind, expiry.message = statusInfo, "no expiry information"
	case s.claims.Expired(now) && s.hasRefresh:
		expiry.kind, expiry.message = statusWarn, "expired; refreshed on next request"
	case s.claims.Expired(now):
		expiry.kind, expiry.message = statusWarn, "expired; log in again"
	default:
		expiry.kind, expiry.message = statusOK, "expires in "+s.claims.ExpiresAt.Sub(now).Round(time.Second).String()
	}
	rows = append(rows, expiry)

	refresh := statusRow{label: "Refresh token", kind: statusOK, message: yesNo(s.hasRefresh)}
	if !s.hasRefresh {
		refresh.kind = statusWarn
	}
	return append(rows, refresh)
}

// renderStatusRows aligns labels to the longest one. With colorize only the
// [KIND] tag is coloured.
func renderStatusRows(rows []statusRow, colorize bool) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.label)+1)
	}
	var b strings.Builder
	for _, r := range rows {
		tag := "[" + statusKindLabel(r.kind) + "]"
		if colorize {
			tag = statusKindColor(r.kind) + tag + ansiReset
		}
		line := fmt.Sprintf("  %-*s %s", width, r.label+":", tag)
		if r.message != "" {
			line += " " + r.message
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	default:
		return ansiBlue
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
