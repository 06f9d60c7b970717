package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Storage keys. Values are flat strings.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
	KeyUserType     = "userType"
)

var allKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData, KeyUserType}

const lockRetryDelay = 50 * time.Millisecond

// ErrLocked is returned when another process holds the session lock past the
// caller's deadline.
var ErrLocked = errors.New("session locked by another process")

// User is the cached current-user record.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// Session reads and writes credential state through a KV.
type Session struct {
	kv       KV
	lockPath string
}

// Option configures a Session.
type Option func(*Session)

// WithLockPath enables the cross-process advisory lock at path.
func WithLockPath(path string) Option {
	return func(s *Session) {
		s.lockPath = strings.TrimSpace(path)
	}
}

// New wraps kv. A nil kv falls back to an in-memory store.
func New(kv KV, opts ...Option) *Session {
	if kv == nil {
		kv = NewMemoryKV()
	}
	s := &Session{kv: kv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// AccessToken returns the stored access token.
func (s *Session) AccessToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token.
func (s *Session) RefreshToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyRefreshToken)
}

// SetTokens stores a freshly issued credential pair. An empty refresh token
// leaves the stored one untouched.
func (s *Session) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.SetAccessToken(ctx, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	if err := s.kv.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("write %s: %w", KeyRefreshToken, err)
	}
	return nil
}

// SetAccessToken replaces the access token in place.
func (s *Session) SetAccessToken(ctx context.Context, access string) error {
	if strings.TrimSpace(access) == "" {
		return errors.New("access token is empty")
	}
	if err := s.kv.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("write %s: %w", KeyAccessToken, err)
	}
	return nil
}

// SetUser caches the current user and its type.
func (s *Session) SetUser(ctx context.Context, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUserData, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", KeyUserData, err)
	}
	if user.UserType == "" {
		return nil
	}
	if err := s.kv.Set(ctx, KeyUserType, user.UserType); err != nil {
		return fmt.Errorf("write %s: %w", KeyUserType, err)
	}
	return nil
}

// User returns the cached user, if any.
func (s *Session) User(ctx context.Context) (User, bool, error) {
	raw, ok, err := s.get(ctx, KeyUserData)
	if err != nil || !ok {
		return User{}, false, err
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, false, fmt.Errorf("decode %s: %w", KeyUserData, err)
	}
	if user.UserType == "" {
		if userType, ok, err := s.get(ctx, KeyUserType); err == nil && ok {
			user.UserType = userType
		}
	}
	return user, true, nil
}

// UserType returns the cached user type string.
func (s *Session) UserType(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyUserType)
}

// Clear removes every session entry.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Authenticated reports whether a non-empty access token is stored. Storage
// errors count as unauthenticated.
func (s *Session) Authenticated(ctx context.Context) bool {
	_, ok, err := s.AccessToken(ctx)
	return err == nil && ok
}

// Lock takes the cross-process session lock, waiting until ctx expires. The
// returned function releases it. Without a lock path Lock is a no-op.
func (s *Session) Lock(ctx context.Context) (func(), error) {
	if s.lockPath == "" {
		return func() {}, nil
	}
	lock := flock.New(s.lockPath)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, ctxErr)
		}
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() { _ = lock.Unlock() }, nil
}
