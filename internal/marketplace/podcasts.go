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

// ListPodcasts returns approved podcasts.
func (s *Service) ListPodcasts(ctx context.Context, filter PodcastFilter) ([]Podcast, error) {
	query := url.Values{}
	if filter.CategoryID > 0 {
		query.Set("category", strconv.FormatInt(filter.CategoryID, 10))
	}
	if filter.Ordering != "" {
		query.Set("ordering", filter.Ordering)
	}
	return listAt[Podcast](ctx, s, "/podcasts/", query)
}

// FeaturedPodcasts returns the featured selection.
func (s *Service) FeaturedPodcasts(ctx context.Context) ([]Podcast, error) {
	return listAt[Podcast](ctx, s, "/podcasts/featured/", nil)
}

// GetPodcast fetches one podcast.
func (s *Service) GetPodcast(ctx context.Context, id int64) (Podcast, error) {
	var p Podcast
	if err := s.get(ctx, podcastPath(id), nil, &p); err != nil {
		return Podcast{}, err
	}
	return p, nil
}

func validatePodcast(in PodcastInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("podcast title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalid("podcast description is required")
	}
	return nil
}

// CreatePodcast publishes a podcast owned by the current user.
func (s *Service) CreatePodcast(ctx context.Context, in PodcastInput) (Podcast, error) {
	if err := validatePodcast(in); err != nil {
		return Podcast{}, err
	}
	var p Podcast
	if err := s.post(ctx, "/podcasts/", in, &p); err != nil {
		return Podcast{}, err
	}
	return p, nil
}

// UpdatePodcast replaces a podcast's editable fields.
func (s *Service) UpdatePodcast(ctx context.Context, id int64, in PodcastInput) (Podcast, error) {
	if err := validatePodcast(in); err != nil {
		return Podcast{}, err
	}
	var p Podcast
	if err := s.put(ctx, podcastPath(id), in, &p); err != nil {
		return Podcast{}, err
	}
	return p, nil
}

// DeletePodcast removes a podcast owned by the current user.
func (s *Service) DeletePodcast(ctx context.Context, id int64) error {
	return s.delete(ctx, podcastPath(id), nil)
}

// LikePodcast records a like.
func (s *Service) LikePodcast(ctx context.Context, id int64) error {
	return s.post(ctx, podcastPath(id)+"like/", nil, nil)
}

// UnlikePodcast withdraws a like.
func (s *Service) UnlikePodcast(ctx context.Context, id int64) error {
	return s.delete(ctx, podcastPath(id)+"like/", nil)
}

// MyPodcasterProfile returns the current user's podcaster profile or
// ErrNoProfile.
func (s *Service) MyPodcasterProfile(ctx context.Context) (PodcasterProfile, error) {
	var p PodcasterProfile
	if err := s.get(ctx, "/podcasts/profiles/my_profile/", nil, &p); err != nil {
		return PodcasterProfile{}, profileErr(err)
	}
	return p, nil
}

// SavePodcasterProfile updates the current user's podcaster profile, creating
// it on first use.
func (s *Service) SavePodcasterProfile(ctx context.Context, in PodcasterInput) (PodcasterProfile, error) {
	if strings.TrimSpace(in.Bio) == "" {
		return PodcasterProfile{}, invalid("bio is required")
	}
	var p PodcasterProfile
	err := s.put(ctx, "/podcasts/profiles/my_profile/", in, &p)
	if errors.Is(err, apiclient.ErrNotFound) {
		err = s.post(ctx, "/podcasts/profiles/", in, &p)
	}
	if err != nil {
		return PodcasterProfile{}, err
	}
	return p, nil
}

func podcastPath(id int64) string {
	return fmt.Sprintf("/podcasts/%d/", id)
}
