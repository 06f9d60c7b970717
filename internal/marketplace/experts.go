package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"podmatch/internal/apiclient"
)

// Reactions accepted by ReactToExpert.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// ListExperts returns approved expert profiles.
func (s *Service) ListExperts(ctx context.Context, filter ExpertFilter) ([]ExpertProfile, error) {
	query := url.Values{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query.Set("search", search)
	}
	if filter.CategoryID > 0 {
		query.Set("category", strconv.FormatInt(filter.CategoryID, 10))
	}
	return listAt[ExpertProfile](ctx, s, "/experts/", query)
}

// FeaturedExperts returns the featured selection.
func (s *Service) FeaturedExperts(ctx context.Context) ([]ExpertProfile, error) {
	return listAt[ExpertProfile](ctx, s, "/experts/featured/", nil)
}

// GetExpert fetches one expert profile.
func (s *Service) GetExpert(ctx context.Context, id int64) (ExpertProfile, error) {
	var p ExpertProfile
	if err := s.get(ctx, fmt.Sprintf("/experts/%d/", id), nil, &p); err != nil {
		return ExpertProfile{}, err
	}
	return p, nil
}

// ExpertCategories lists expert categories.
func (s *Service) ExpertCategories(ctx context.Context) ([]Category, error) {
	return listAt[Category](ctx, s, "/experts/categories/", nil)
}

// MyExpertProfile returns the current user's expert profile or ErrNoProfile.
func (s *Service) MyExpertProfile(ctx context.Context) (ExpertProfile, error) {
	var p ExpertProfile
	if err := s.get(ctx, "/experts/my-profile/", nil, &p); err != nil {
		return ExpertProfile{}, profileErr(err)
	}
	return p, nil
}

// SaveExpertProfile updates the current user's expert profile, creating it on
// first use.
func (s *Service) SaveExpertProfile(ctx context.Context, in ExpertInput) (ExpertProfile, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Bio) == "" {
		return ExpertProfile{}, invalid("name and bio are required")
	}
	var p ExpertProfile
	err := s.put(ctx, "/experts/my-profile/", in, &p)
	if errors.Is(err, apiclient.ErrNotFound) {
		err = s.post(ctx, "/experts/", in, &p)
	}
	if err != nil {
		return ExpertProfile{}, err
	}
	return p, nil
}

// ReactToExpert records a like or dislike on an expert profile.
func (s *Service) ReactToExpert(ctx context.Context, id int64, reaction string) error {
	reaction = strings.ToLower(strings.TrimSpace(reaction))
	if reaction != ReactionLike && reaction != ReactionDislike {
		return invalid("reaction must be %q or %q", ReactionLike, ReactionDislike)
	}
	body := map[string]string{"reaction_type": reaction}
	return s.post(ctx, fmt.Sprintf("/experts/profiles/%d/react/", id), body, nil)
}
