package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Collaboration statuses.
const (
	CollaborationPending  = "pending"
	CollaborationAccepted = "accepted"
	CollaborationRejected = "rejected"
)

// CollaborationInput is a new collaboration request.
type CollaborationInput struct {
	Receiver  int64
	PodcastID int64
	Title     string
	Message   string
	Date      time.Time
}

type collaborationRequest struct {
	Receiver int64  `json:"receiver"`
	Podcast  int64  `json:"podcast,omitempty"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message"`
	Date     string `json:"date,omitempty"`
}

// Collaborations lists requests the current user sent or received.
func (s *Service) Collaborations(ctx context.Context) ([]Collaboration, error) {
	return listAt[Collaboration](ctx, s, "/collaborations/", nil)
}

// RequestCollaboration sends a collaboration request to another user.
func (s *Service) RequestCollaboration(ctx context.Context, in CollaborationInput) (Collaboration, error) {
	if in.Receiver <= 0 {
		return Collaboration{}, invalid("receiver is required")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return Collaboration{}, invalid("message is required")
	}
	req := collaborationRequest{
		Receiver: in.Receiver,
		Podcast:  in.PodcastID,
		Title:    strings.TrimSpace(in.Title),
		Message:  message,
	}
	if !in.Date.IsZero() {
		req.Date = in.Date.Format(time.DateOnly)
	}
	var c Collaboration
	if err := s.post(ctx, "/collaborations/", req, &c); err != nil {
		return Collaboration{}, err
	}
	return c, nil
}

// RespondToCollaboration accepts or rejects a received request.
func (s *Service) RespondToCollaboration(ctx context.Context, id int64, status string) (Collaboration, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != CollaborationAccepted && status != CollaborationRejected {
		return Collaboration{}, invalid("status must be %s or %s", CollaborationAccepted, CollaborationRejected)
	}
	var c Collaboration
	if err := s.patch(ctx, fmt.Sprintf("/collaborations/%d/", id), map[string]string{"status": status}, &c); err != nil {
		return Collaboration{}, err
	}
	return c, nil
}

// CancelCollaboration withdraws a request.
func (s *Service) CancelCollaboration(ctx context.Context, id int64) error {
	return s.delete(ctx, fmt.Sprintf("/collaborations/%d/", id), nil)
}
