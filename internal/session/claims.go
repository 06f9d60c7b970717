package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims summarizes what the access token says about itself. Values are read
// without signature verification; the server remains the authority.
type Claims struct {
	Subject   string
	UserID    string
	ExpiresAt time.Time
	Opaque    bool
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the token expiry is at or before now. Tokens
// without expiry never report expired.
func (c Claims) Expired(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.ExpiresAt)
}

type accessClaims struct {
	UserID any `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// AccessClaims decodes the stored access token. ok is false when no token is
// stored. Non-JWT tokens yield Claims{Opaque: true}.
func (s *Session) AccessClaims(ctx context.Context) (Claims, bool, error) {
	token, ok, err := s.AccessToken(ctx)
	if err != nil || !ok {
		return Claims{}, false, err
	}
	return ParseClaims(token), true, nil
}

// ParseClaims decodes token as an unverified JWT.
func ParseClaims(token string) Claims {
	var claims accessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{Opaque: true}
	}
	out := Claims{Subject: claims.Subject}
	if claims.UserID != nil {
		out.UserID = formatUserID(claims.UserID)
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}

func formatUserID(v any) string {
	switch id := v.(type) {
	case float64:
		return fmt.Sprintf("%.0f", id)
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
