package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"podmatch/internal/apiclient"
	"podmatch/internal/logging"
	"podmatch/internal/session"
)

var (
	// ErrInvalidCredentials is returned when login is rejected with 401.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrEmailNotVerified is returned when login is rejected with 403.
	ErrEmailNotVerified = errors.New("please verify your email before logging in")
)

// User types accepted by registration.
const (
	UserTypePodcaster = "podcaster"
	UserTypeExpert    = "expert"
)

const logoutLockTimeout = 5 * time.Second

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *session.User `json:"user"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	UserType        string `json:"user_type"`
}

// Validate applies the checks that do not need the server.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return invalid("username is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return invalid("email is required")
	}
	if r.Password == "" {
		return invalid("password is required")
	}
	if r.Password != r.ConfirmPassword {
		return invalid("passwords do not match")
	}
	switch r.UserType {
	case UserTypePodcaster, UserTypeExpert:
	default:
		return invalid("user type must be %q or %q", UserTypePodcaster, UserTypeExpert)
	}
	return nil
}

// Login exchanges credentials for a token pair and caches the user.
func (s *Service) Login(ctx context.Context, username, password string) (session.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return session.User{}, invalid("username and password are required")
	}

	var resp loginResponse
	err := s.post(ctx, "/users/login/", loginRequest{Username: username, Password: password}, &resp)
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		return session.User{}, ErrInvalidCredentials
	case errors.Is(err, apiclient.ErrForbidden):
		return session.User{}, ErrEmailNotVerified
	case err != nil:
		return session.User{}, err
	}
	if resp.Access == "" || resp.User == nil {
		return session.User{}, errors.New("login: invalid response format from server")
	}

	if err := s.session.SetTokens(ctx, resp.Access, resp.Refresh); err != nil {
		return session.User{}, err
	}
	if err := s.session.SetUser(ctx, *resp.User); err != nil {
		return session.User{}, err
	}
	s.logger.Info("logged in",
		logging.String("username", resp.User.Username),
		logging.String("user_type", resp.User.UserType),
	)
	return *resp.User, nil
}

// Register creates an account. The server sends a verification email; the
// session is not touched.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (session.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.UserType == "" {
		req.UserType = UserTypePodcaster
	}
	if err := req.Validate(); err != nil {
		return session.User{}, err
	}
	var user session.User
	if err := s.post(ctx, "/users/register/", req, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// VerifyEmail confirms an address with the token from the verification email.
func (s *Service) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", invalid("verification token is required")
	}
	var resp struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := s.get(ctx, "/users/verify-email/"+url.PathEscape(token)+"/", nil, &resp); err != nil {
		return "", err
	}
	if resp.Message != "" {
		return resp.Message, nil
	}
	return resp.Detail, nil
}

// Me fetches the current user and refreshes the cached copy.
func (s *Service) Me(ctx context.Context) (session.User, error) {
	var user session.User
	if err := s.get(ctx, "/users/me/", nil, &user); err != nil {
		return session.User{}, err
	}
	if err := s.session.SetUser(ctx, user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (session.User, error) {
	var user session.User
	if err := s.get(ctx, fmt.Sprintf("/users/%d/", id), nil, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// CurrentUser returns the cached user without a network call.
func (s *Service) CurrentUser(ctx context.Context) (session.User, bool, error) {
	return s.session.User(ctx)
}

// Logout tells the server to revoke the refresh token and always clears the
// local session. Server failures are logged, not returned.
func (s *Service) Logout(ctx context.Context) error {
	if refresh, ok, err := s.session.RefreshToken(ctx); err == nil && ok {
		if err := s.post(ctx, "/users/logout/", map[string]string{"refresh": refresh}, nil); err != nil {
			s.logger.Debug("server logout failed; clearing local session anyway", logging.Error(err))
		}
	}

	lockCtx, cancel := context.WithTimeout(ctx, logoutLockTimeout)
	defer cancel()
	unlock, err := s.session.Lock(lockCtx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}
