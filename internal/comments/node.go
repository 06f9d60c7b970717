package comments

import (
	"fmt"
	"strings"
	"time"
)

// Author identifies who wrote a comment.
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Node is one comment and its ordered replies.
type Node struct {
	ID        int64     `json:"id"`
	Author    Author    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
	ParentID  *int64    `json:"parent_id"`
	Reactions Reactions `json:"reactions"`
	Replies   []Node    `json:"replies"`
}

// Reactions is a comment's like and dislike tally as seen by the current
// user. Liked and Disliked are never both set.
type Reactions struct {
	Likes    int  `json:"likes"`
	Dislikes int  `json:"dislikes"`
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
}

// Reaction is a toggle a user can apply to a comment.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// ParseReaction accepts "like" or "dislike" in any case.
func ParseReaction(value string) (Reaction, error) {
	switch r := Reaction(strings.ToLower(strings.TrimSpace(value))); r {
	case ReactionLike, ReactionDislike:
		return r, nil
	default:
		return "", fmt.Errorf("unknown reaction %q (want like or dislike)", value)
	}
}

// IsTopLevel reports whether the node has no parent.
func (n Node) IsTopLevel() bool {
	return n.ParentID == nil
}

// CanModify reports whether userID may edit or delete n.
func CanModify(n Node, userID int64) bool {
	return userID != 0 && n.Author.ID == userID
}

func cloneNode(n Node) Node {
	if n.ParentID != nil {
		parent := *n.ParentID
		n.ParentID = &parent
	}
	n.Replies = cloneTree(n.Replies)
	return n
}

func cloneTree(roots []Node) []Node {
	if roots == nil {
		return nil
	}
	out := make([]Node, len(roots))
	for i, n := range roots {
		out[i] = cloneNode(n)
	}
	return out
}
