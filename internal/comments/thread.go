package comments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrNotOwner is returned when the current user did not author the comment.
	ErrNotOwner = errors.New("only the author can modify this comment")
	// ErrUnknownComment is returned when an id is not in the loaded tree.
	ErrUnknownComment = errors.New("comment not found in thread")
	// ErrNotEditing is returned by SaveEdit outside the editing state.
	ErrNotEditing = errors.New("no comment is being edited")
	// ErrNoReplyTarget is returned by Reply without a prior StartReply.
	ErrNoReplyTarget = errors.New("no reply target selected")
	// ErrReactionsUnsupported is returned by React when the backend has no
	// reaction endpoints.
	ErrReactionsUnsupported = errors.New("comment reactions are not supported here")
)

// Backend is the API surface a Thread needs for one content item.
type Backend interface {
	List(ctx context.Context) ([]Node, error)
	Create(ctx context.Context, body string, parentID *int64) (Node, error)
	Update(ctx context.Context, id int64, body string) (Node, error)
	Remove(ctx context.Context, id int64) error
}

// Reactor is implemented by backends that can toggle comment reactions. The
// returned tally reflects the state after the toggle.
type Reactor interface {
	React(ctx context.Context, id int64, reaction Reaction) (Reactions, error)
}

// Mode is the edit affordance state.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
	ModeSaving
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeSaving:
		return "saving"
	default:
		return "viewing"
	}
}

// ThreadOption customises a Thread.
type ThreadOption func(*Thread)

// WithMinLength overrides the minimum body length.
func WithMinLength(n int) ThreadOption {
	return func(t *Thread) {
		if n > 0 {
			t.minLength = n
		}
	}
}

// WithCurrentUser sets the user whose ownership gates edit and delete.
func WithCurrentUser(userID int64) ThreadOption {
	return func(t *Thread) {
		t.userID = userID
	}
}

// Thread owns one content item's comment tree and its edit/reply state. At
// most one comment is being edited, and starting a reply leaves any edit.
// Network calls run without holding the lock; responses are applied in the
// order they resolve and references to removed comments are dropped.
type Thread struct {
	backend   Backend
	minLength int
	userID    int64

	mu        sync.Mutex
	roots     []Node
	mode      Mode
	editingID int64
	replyTo   int64
}

// NewThread builds an empty Thread over backend.
func NewThread(backend Backend, opts ...ThreadOption) *Thread {
	t := &Thread{backend: backend, minLength: DefaultMinLength, roots: []Node{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load replaces the tree with the backend's current comments.
func (t *Thread) Load(ctx context.Context) error {
	nodes, err := t.backend.List(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = TopLevel(nodes)
	t.resetStale()
	return nil
}

// Roots returns a copy of the top-level comments.
func (t *Thread) Roots() []Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneTree(t.roots)
}

// Mode returns the edit affordance state.
func (t *Thread) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// EditingID returns the comment being edited, or 0.
func (t *Thread) EditingID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editingID
}

// ReplyTarget returns the comment being replied to, or 0.
func (t *Thread) ReplyTarget() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replyTo
}

// Post validates body and creates a top-level comment.
func (t *Thread) Post(ctx context.Context, body string) (Node, error) {
	clean, err := ValidateBody(body, t.minLength)
	if err != nil {
		return Node{}, err
	}
	created, err := t.backend.Create(ctx, clean, nil)
	if err != nil {
		return Node{}, err
	}
	created.ParentID = nil

	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = InsertTopLevel(t.roots, created)
	return created, nil
}

// StartReply selects parentID as the reply target and leaves any edit.
func (t *Thread) StartReply(parentID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := Find(t.roots, parentID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownComment, parentID)
	}
	t.mode = ModeViewing
	t.editingID = 0
	t.replyTo = parentID
	return nil
}

// CancelReply drops the reply target.
func (t *Thread) CancelReply() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replyTo = 0
}

// Reply validates body and posts it under the current reply target. The
// target is kept when validation or the request fails.
func (t *Thread) Reply(ctx context.Context, body string) (Node, error) {
	t.mu.Lock()
	parentID := t.replyTo
	t.mu.Unlock()
	if parentID == 0 {
		return Node{}, ErrNoReplyTarget
	}

	clean, err := ValidateBody(body, t.minLength)
	if err != nil {
		return Node{}, err
	}
	created, err := t.backend.Create(ctx, clean, &parentID)
	if err != nil {
		return Node{}, err
	}
	created.ParentID = &parentID

	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = InsertReply(t.roots, parentID, created)
	if t.replyTo == parentID {
		t.replyTo = 0
	}
	return created, nil
}

// StartEdit enters the editing state for id, cancelling any other edit and
// dropping the reply target.
func (t *Thread) StartEdit(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == ModeSaving {
		return fmt.Errorf("comment %d is still saving", t.editingID)
	}
	n, ok := Find(t.roots, id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownComment, id)
	}
	if !CanModify(n, t.userID) {
		return ErrNotOwner
	}
	t.mode = ModeEditing
	t.editingID = id
	t.replyTo = 0
	return nil
}

// CancelEdit returns to viewing without saving.
func (t *Thread) CancelEdit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == ModeEditing {
		t.mode = ModeViewing
		t.editingID = 0
	}
}

// SaveEdit validates body and saves it for the comment being edited. On
// validation or request failure the thread stays in editing.
func (t *Thread) SaveEdit(ctx context.Context, body string) (Node, error) {
	t.mu.Lock()
	if t.mode != ModeEditing {
		t.mu.Unlock()
		return Node{}, ErrNotEditing
	}
	id := t.editingID
	clean, err := ValidateBody(body, t.minLength)
	if err != nil {
		t.mu.Unlock()
		return Node{}, err
	}
	t.mode = ModeSaving
	t.mu.Unlock()

	updated, err := t.backend.Update(ctx, id, clean)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		if t.mode == ModeSaving && t.editingID == id {
			t.mode = ModeEditing
		}
		return Node{}, err
	}
	if updated.Body == "" {
		updated.Body = clean
	}
	t.roots = Edit(t.roots, id, updated)
	if t.editingID == id {
		t.mode = ModeViewing
		t.editingID = 0
	}
	result, _ := Find(t.roots, id)
	return result, nil
}

// Delete removes id and its replies after the backend confirms.
func (t *Thread) Delete(ctx context.Context, id int64) error {
	t.mu.Lock()
	n, ok := Find(t.roots, id)
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownComment, id)
	}
	if !CanModify(n, t.userID) {
		return ErrNotOwner
	}

	if err := t.backend.Remove(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = Delete(t.roots, id)
	t.resetStale()
	return nil
}

// React toggles reaction on id and stores the server's tally. Any signed-in
// user may react; edit and reply state are left alone.
func (t *Thread) React(ctx context.Context, id int64, reaction Reaction) (Node, error) {
	reactor, ok := t.backend.(Reactor)
	if !ok {
		return Node{}, ErrReactionsUnsupported
	}
	if _, err := ParseReaction(string(reaction)); err != nil {
		return Node{}, err
	}
	t.mu.Lock()
	_, ok = Find(t.roots, id)
	t.mu.Unlock()
	if !ok {
		return Node{}, fmt.Errorf("%w: %d", ErrUnknownComment, id)
	}

	tally, err := reactor.React(ctx, id, reaction)
	if err != nil {
		return Node{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = SetReactions(t.roots, id, tally)
	result, ok := Find(t.roots, id)
	if !ok {
		return Node{}, fmt.Errorf("%w: %d", ErrUnknownComment, id)
	}
	return result, nil
}

// resetStale clears edit and reply state that points at removed comments.
// Callers hold t.mu.
func (t *Thread) resetStale() {
	present := func(id int64) bool {
		_, ok := Find(t.roots, id)
		return ok
	}
	if t.editingID != 0 && !present(t.editingID) {
		t.mode = ModeViewing
		t.editingID = 0
	}
	if t.replyTo != 0 && !present(t.replyTo) {
		t.replyTo = 0
	}
}

// Owned returns the ids of comments the current user may modify.
func (t *Thread) Owned() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []int64
	Walk(t.roots, func(n Node, _ int) bool {
		if CanModify(n, t.userID) {
			ids = append(ids, n.ID)
		}
		return true
	})
	slices.Sort(ids)
	return ids
}
