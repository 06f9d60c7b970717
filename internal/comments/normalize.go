package comments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wireComment accepts every comment shape the API returns.
type wireComment struct {
	ID        json.Number       `json:"id"`
	User      json.RawMessage   `json:"user"`
	Author    json.RawMessage   `json:"author"`
	UserName  string            `json:"user_name"`
	Username  string            `json:"username"`
	Content   *string           `json:"content"`
	Text      *string           `json:"text"`
	Parent    json.RawMessage   `json:"parent"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Replies   []json.RawMessage `json:"replies"`

	LikesCount    int  `json:"likes_count"`
	DislikesCount int  `json:"dislikes_count"`
	IsLiked       bool `json:"is_liked"`
	IsDisliked    bool `json:"is_disliked"`
}

type wireUser struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
}

// DecodeNode converts one API comment object into a Node. The author may be
// an id or an embedded user object, the body may be named content or text,
// and parent may be null, missing, an id or an embedded comment.
func DecodeNode(data []byte) (Node, error) {
	var wire wireComment
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return Node{}, fmt.Errorf("decode comment: %w", err)
	}

	id, err := parseID(wire.ID)
	if err != nil {
		return Node{}, fmt.Errorf("decode comment id: %w", err)
	}

	n := Node{ID: id}

	authorRaw := wire.User
	if isNull(authorRaw) {
		authorRaw = wire.Author
	}
	author, err := decodeAuthor(authorRaw)
	if err != nil {
		return Node{}, fmt.Errorf("decode comment %d author: %w", id, err)
	}
	if author.Username == "" {
		author.Username = firstNonEmpty(wire.UserName, wire.Username)
	}
	n.Author = author

	switch {
	case wire.Content != nil:
		n.Body = *wire.Content
	case wire.Text != nil:
		n.Body = *wire.Text
	}

	parent, err := decodeParent(wire.Parent)
	if err != nil {
		return Node{}, fmt.Errorf("decode comment %d parent: %w", id, err)
	}
	n.ParentID = parent

	n.CreatedAt = parseTime(wire.CreatedAt)
	n.UpdatedAt = parseTime(wire.UpdatedAt)
	n.Reactions = Reactions{
		Likes:    wire.LikesCount,
		Dislikes: wire.DislikesCount,
		Liked:    wire.IsLiked,
		Disliked: wire.IsDisliked && !wire.IsLiked,
	}

	if wire.Replies != nil {
		n.Replies = make([]Node, 0, len(wire.Replies))
		for _, raw := range wire.Replies {
			reply, err := DecodeNode(raw)
			if err != nil {
				return Node{}, err
			}
			if reply.ParentID == nil {
				parentID := n.ID
				reply.ParentID = &parentID
			}
			n.Replies = append(n.Replies, reply)
		}
	}
	return n, nil
}

// DecodeNodes converts a comment list response into top-level nodes. Bare
// arrays and paginated {"results": [...]} envelopes are accepted. Flat lists
// that carry replies as separate entries are reassembled into a tree.
func DecodeNodes(data []byte) ([]Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Node{}, nil
	}

	var items []json.RawMessage
	if trimmed[0] == '{' {
		var envelope struct {
			Results  []json.RawMessage `json:"results"`
			Comments []json.RawMessage `json:"comments"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode comment list: %w", err)
		}
		items = envelope.Results
		if items == nil {
			items = envelope.Comments
		}
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode comment list: %w", err)
	}

	nodes := make([]Node, 0, len(items))
	for _, raw := range items {
		n, err := DecodeNode(raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return assemble(nodes), nil
}

// assemble attaches flat reply entries to their parents and returns the
// top-level nodes. Entries already nested under their parent are skipped.
func assemble(nodes []Node) []Node {
	nested := make(map[int64]struct{})
	Walk(nodes, func(n Node, depth int) bool {
		if depth > 0 {
			nested[n.ID] = struct{}{}
		}
		return true
	})

	roots := TopLevel(nodes)
	pending := make([]Node, 0)
	for _, n := range nodes {
		if n.IsTopLevel() {
			continue
		}
		if _, ok := nested[n.ID]; ok {
			continue
		}
		pending = append(pending, n)
	}

	// Replies may precede their parents in a flat list.
	for len(pending) > 0 {
		remaining := pending[:0]
		for _, n := range pending {
			if _, ok := Find(roots, *n.ParentID); !ok {
				remaining = append(remaining, n)
				continue
			}
			roots = InsertReply(roots, *n.ParentID, n)
		}
		if len(remaining) == len(pending) {
			break
		}
		pending = remaining
	}
	return roots
}

func decodeAuthor(raw json.RawMessage) (Author, error) {
	if isNull(raw) {
		return Author{}, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		var user wireUser
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&user); err != nil {
			return Author{}, err
		}
		id, err := parseID(user.ID)
		if err != nil {
			return Author{}, err
		}
		return Author{ID: id, Username: firstNonEmpty(user.Username, user.Name)}, nil
	}
	id, err := parseRawID(trimmed)
	if err != nil {
		return Author{}, err
	}
	return Author{ID: id}, nil
}

func decodeParent(raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		var embedded struct {
			ID json.Number `json:"id"`
		}
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&embedded); err != nil {
			return nil, err
		}
		id, err := parseID(embedded.ID)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	id, err := parseRawID(trimmed)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseRawID(raw []byte) (int64, error) {
	text := strings.Trim(string(raw), `"`)
	return parseID(json.Number(text))
}

func parseID(n json.Number) (int64, error) {
	text := strings.TrimSpace(n.String())
	if text == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", text)
	}
	return id, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
