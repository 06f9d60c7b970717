package marketplace

import (
	"context"
	"fmt"
)

// BookmarkTarget names exactly one podcast or expert.
type BookmarkTarget struct {
	PodcastID int64 `json:"podcast,omitempty"`
	ExpertID  int64 `json:"expert,omitempty"`
}

// Bookmarks lists the current user's bookmarks.
func (s *Service) Bookmarks(ctx context.Context) ([]Bookmark, error) {
	return listAt[Bookmark](ctx, s, "/bookmarks/", nil)
}

// AddBookmark saves a podcast or expert.
func (s *Service) AddBookmark(ctx context.Context, target BookmarkTarget) (Bookmark, error) {
	if (target.PodcastID == 0) == (target.ExpertID == 0) {
		return Bookmark{}, invalid("bookmark exactly one podcast or expert")
	}
	var b Bookmark
	if err := s.post(ctx, "/bookmarks/", target, &b); err != nil {
		return Bookmark{}, err
	}
	return b, nil
}

// RemoveBookmark deletes a bookmark by id.
func (s *Service) RemoveBookmark(ctx context.Context, id int64) error {
	return s.delete(ctx, fmt.Sprintf("/bookmarks/%d/", id), nil)
}
