package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"podmatch/internal/apiclient"
	"podmatch/internal/logging"
	"podmatch/internal/session"
)

// ErrNoProfile is returned when the current user has not created a profile yet.
var ErrNoProfile = errors.New("profile not created yet")

// API is the request surface Service needs. *apiclient.Client satisfies it.
type API interface {
	Do(ctx context.Context, req apiclient.Request, out any) error
}

// Service exposes marketplace operations.
type Service struct {
	api     API
	session *session.Session
	logger  *slog.Logger
}

// New builds a Service. A nil logger discards output.
func New(api API, sess *session.Session, logger *slog.Logger) *Service {
	if sess == nil {
		sess = session.New(nil)
	}
	return &Service{
		api:     api,
		session: sess,
		logger:  logging.NewComponentLogger(logger, "marketplace"),
	}
}

// Session returns the session the service keeps in step.
func (s *Service) Session() *session.Session {
	return s.session
}

func (s *Service) get(ctx context.Context, path string, query url.Values, out any) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (s *Service) post(ctx context.Context, path string, body, out any) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (s *Service) put(ctx context.Context, path string, body, out any) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (s *Service) patch(ctx context.Context, path string, body, out any) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (s *Service) delete(ctx context.Context, path string, body any) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: path, Body: body}, nil)
}

// decodeList accepts a bare JSON array or a paginated {"results": [...]} body.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if page.Results == nil {
			return []T{}, nil
		}
		return page.Results, nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

func listAt[T any](ctx context.Context, s *Service, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := s.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apiclient.ErrValidation, fmt.Sprintf(format, args...))
}

func profileErr(err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return ErrNoProfile
	}
	return err
}
