package marketplace

import (
	"context"
	"encoding/json"
	"fmt"

	"podmatch/internal/comments"
)

type createCommentRequest struct {
	Content string `json:"content"`
	Parent  *int64 `json:"parent,omitempty"`
}

// PodcastComments is the comment endpoint set of one podcast.
type PodcastComments struct {
	svc       *Service
	podcastID int64
}

// ExpertComments is the comment endpoint set of one expert profile.
type ExpertComments struct {
	svc      *Service
	expertID int64
}

var (
	_ comments.Backend = (*PodcastComments)(nil)
	_ comments.Backend = (*ExpertComments)(nil)
	_ comments.Reactor = (*PodcastComments)(nil)
	_ comments.Reactor = (*ExpertComments)(nil)
)

// PodcastComments returns the comment backend for a podcast.
func (s *Service) PodcastComments(podcastID int64) *PodcastComments {
	return &PodcastComments{svc: s, podcastID: podcastID}
}

// ExpertComments returns the comment backend for an expert profile.
func (s *Service) ExpertComments(expertID int64) *ExpertComments {
	return &ExpertComments{svc: s, expertID: expertID}
}

func (b *PodcastComments) base() string {
	return fmt.Sprintf("/podcasts/%d/comments/", b.podcastID)
}

func (b *PodcastComments) List(ctx context.Context) ([]comments.Node, error) {
	return b.svc.listComments(ctx, b.base())
}

func (b *PodcastComments) Create(ctx context.Context, body string, parentID *int64) (comments.Node, error) {
	return b.svc.commentCall(ctx, b.svc.post, b.base(), createCommentRequest{Content: body, Parent: parentID})
}

func (b *PodcastComments) Update(ctx context.Context, id int64, body string) (comments.Node, error) {
	path := fmt.Sprintf("%s%d/", b.base(), id)
	return b.svc.commentCall(ctx, b.svc.put, path, map[string]string{"content": body})
}

func (b *PodcastComments) Remove(ctx context.Context, id int64) error {
	return b.svc.delete(ctx, fmt.Sprintf("%s%d/", b.base(), id), nil)
}

func (b *PodcastComments) React(ctx context.Context, id int64, reaction comments.Reaction) (comments.Reactions, error) {
	return b.svc.ReactToComment(ctx, id, reaction)
}

func (b *ExpertComments) base() string {
	return fmt.Sprintf("/experts/profiles/%d/", b.expertID)
}

func (b *ExpertComments) List(ctx context.Context) ([]comments.Node, error) {
	return b.svc.listComments(ctx, b.base()+"comments/")
}

func (b *ExpertComments) Create(ctx context.Context, body string, parentID *int64) (comments.Node, error) {
	return b.svc.commentCall(ctx, b.svc.post, b.base()+"add_comment/", createCommentRequest{Content: body, Parent: parentID})
}

func (b *ExpertComments) Update(ctx context.Context, id int64, body string) (comments.Node, error) {
	payload := struct {
		CommentID int64  `json:"comment_id"`
		Content   string `json:"content"`
	}{CommentID: id, Content: body}
	return b.svc.commentCall(ctx, b.svc.put, b.base()+"edit_comment/", payload)
}

func (b *ExpertComments) Remove(ctx context.Context, id int64) error {
	return b.svc.delete(ctx, b.base()+"delete_comment/", map[string]int64{"comment_id": id})
}

func (b *ExpertComments) React(ctx context.Context, id int64, reaction comments.Reaction) (comments.Reactions, error) {
	return b.svc.ReactToComment(ctx, id, reaction)
}

type reactionResponse struct {
	IsLiked       bool `json:"is_liked"`
	IsDisliked    bool `json:"is_disliked"`
	LikesCount    int  `json:"likes_count"`
	DislikesCount int  `json:"dislikes_count"`
}

// ReactToComment toggles a like or dislike on any comment. Liking clears a
// dislike and the reverse, so only the toggled flag can be set afterwards.
func (s *Service) ReactToComment(ctx context.Context, commentID int64, reaction comments.Reaction) (comments.Reactions, error) {
	if commentID <= 0 {
		return comments.Reactions{}, invalid("comment id must be positive")
	}
	reaction, err := comments.ParseReaction(string(reaction))
	if err != nil {
		return comments.Reactions{}, invalid("%v", err)
	}
	var resp reactionResponse
	if err := s.post(ctx, fmt.Sprintf("/comments/%d/%s/", commentID, reaction), nil, &resp); err != nil {
		return comments.Reactions{}, err
	}
	tally := comments.Reactions{Likes: resp.LikesCount, Dislikes: resp.DislikesCount}
	if reaction == comments.ReactionLike {
		tally.Liked = resp.IsLiked
	} else {
		tally.Disliked = resp.IsDisliked
	}
	return tally, nil
}

func (s *Service) listComments(ctx context.Context, path string) ([]comments.Node, error) {
	var raw json.RawMessage
	if err := s.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	return comments.DecodeNodes(raw)
}

type sendFunc func(ctx context.Context, path string, body, out any) error

// commentCall sends a create or update and normalizes the echoed comment.
// Echoes without an author are attributed to the cached current user.
func (s *Service) commentCall(ctx context.Context, send sendFunc, path string, body any) (comments.Node, error) {
	var raw json.RawMessage
	if err := send(ctx, path, body, &raw); err != nil {
		return comments.Node{}, err
	}
	n, err := comments.DecodeNode(raw)
	if err != nil {
		return comments.Node{}, err
	}
	if n.Author.ID == 0 {
		if user, ok, err := s.session.User(ctx); err == nil && ok {
			n.Author = comments.Author{ID: user.ID, Username: user.Username}
		}
	}
	return n, nil
}
