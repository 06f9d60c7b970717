package marketplace

import (
	"context"
	"fmt"
)

const (
	minScore = 1
	maxScore = 5
)

type ratingRequest struct {
	PodcastID int64 `json:"podcast_id,omitempty"`
	ExpertID  int64 `json:"expert_id,omitempty"`
	Score     int   `json:"score"`
}

// RatePodcast scores a podcast.
func (s *Service) RatePodcast(ctx context.Context, podcastID int64, score int) (Rating, error) {
	return s.rate(ctx, ratingRequest{PodcastID: podcastID, Score: score})
}

// RateExpert scores an expert profile.
func (s *Service) RateExpert(ctx context.Context, expertID int64, score int) (Rating, error) {
	return s.rate(ctx, ratingRequest{ExpertID: expertID, Score: score})
}

func (s *Service) rate(ctx context.Context, req ratingRequest) (Rating, error) {
	if req.Score < minScore || req.Score > maxScore {
		return Rating{}, invalid("score must be between %d and %d", minScore, maxScore)
	}
	if (req.PodcastID == 0) == (req.ExpertID == 0) {
		return Rating{}, invalid("rate exactly one podcast or expert")
	}
	var r Rating
	if err := s.post(ctx, "/ratings/", req, &r); err != nil {
		return Rating{}, err
	}
	return r, nil
}

// ListRatings returns the current user's ratings.
func (s *Service) ListRatings(ctx context.Context) ([]Rating, error) {
	return listAt[Rating](ctx, s, "/ratings/", nil)
}

// DeleteRating withdraws a rating.
func (s *Service) DeleteRating(ctx context.Context, id int64) error {
	return s.delete(ctx, fmt.Sprintf("/ratings/%d/", id), nil)
}
