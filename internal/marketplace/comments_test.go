package marketplace_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"podmatch/internal/apiclient"
	"podmatch/internal/comments"
	"podmatch/internal/session"
)

func TestPodcastCommentsDriveThread(t *testing.T) {
	svc, sess, api := newService(t, func(w http.ResponseWriter, h hit) {
		switch {
		case h.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, `[
				{"id":1,"user":7,"user_name":"ana","content":"First!","parent":null,"created_at":"2025-01-01T10:00:00Z"},
				{"id":2,"user":8,"user_name":"bo","content":"Reply","parent":1,"created_at":"2025-01-01T11:00:00Z"}
			]`)
		case h.Method == http.MethodPost && strings.Contains(h.Body, `"parent"`):
			writeJSON(w, http.StatusCreated, `{"id":3,"user":7,"user_name":"ana","content":"Thanks bo","parent":2}`)
		case h.Method == http.MethodPost:
			writeJSON(w, http.StatusCreated, `{"id":4,"user":7,"user_name":"ana","content":"Second","parent":null}`)
		case h.Method == http.MethodPut:
			writeJSON(w, http.StatusOK, `{"id":1,"user":7,"user_name":"ana","content":"First, edited","parent":null}`)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()
	if err := sess.SetUser(ctx, session.User{ID: 7, Username: "ana"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	thread := comments.NewThread(svc.PodcastComments(12), comments.WithCurrentUser(7))
	if err := thread.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	roots := thread.Roots()
	if len(roots) != 1 || len(roots[0].Replies) != 1 {
		t.Fatalf("unexpected tree %#v", roots)
	}

	if err := thread.StartReply(2); err != nil {
		t.Fatalf("StartReply: %v", err)
	}
	if _, err := thread.Reply(ctx, "Thanks bo"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if _, err := thread.Post(ctx, "Second"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if err := thread.StartEdit(1); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	if _, err := thread.SaveEdit(ctx, "First, edited"); err != nil {
		t.Fatalf("SaveEdit: %v", err)
	}
	if err := thread.Delete(ctx, 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	roots = thread.Roots()
	if len(roots) != 1 || roots[0].Body != "First, edited" {
		t.Fatalf("unexpected roots %#v", roots)
	}
	if n, ok := comments.Find(roots, 3); !ok || n.ParentID == nil || *n.ParentID != 2 {
		t.Fatalf("reply not nested under 2: %#v", n)
	}

	var got []string
	for _, h := range api.all() {
		got = append(got, h.Method+" "+h.Path)
	}
	want := []string{
		"GET /podcasts/12/comments/",
		"POST /podcasts/12/comments/",
		"POST /podcasts/12/comments/",
		"PUT /podcasts/12/comments/1/",
		"DELETE /podcasts/12/comments/4/",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected calls %v", got)
	}
	if body := api.all()[1].Body; body != `{"content":"Thanks bo","parent":2}` {
		t.Fatalf("unexpected reply body %s", body)
	}
}

func TestExpertCommentsUseActionEndpoints(t *testing.T) {
	svc, sess, api := newService(t, func(w http.ResponseWriter, h hit) {
		switch {
		case h.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, `{"results":[{"id":5,"author":{"id":9,"username":"dr"},"text":"Hello","created_at":"2025-02-01T08:00:00Z"}]}`)
		case h.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, `{"id":6,"content":"echo"}`)
		}
	})
	ctx := context.Background()
	if err := sess.SetUser(ctx, session.User{ID: 9, Username: "dr"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	backend := svc.ExpertComments(3)

	nodes, err := backend.List(ctx)
	if err != nil || len(nodes) != 1 || nodes[0].Author.Username != "dr" || nodes[0].Body != "Hello" {
		t.Fatalf("List: %#v %v", nodes, err)
	}
	created, err := backend.Create(ctx, "echo", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Author.ID != 9 || created.Author.Username != "dr" {
		t.Fatalf("expected author from session, got %#v", created.Author)
	}
	if _, err := backend.Update(ctx, 6, "echo"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := backend.Remove(ctx, 6); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	hits := api.all()
	want := []hit{
		{Method: http.MethodGet, Path: "/experts/profiles/3/comments/"},
		{Method: http.MethodPost, Path: "/experts/profiles/3/add_comment/", Body: `{"content":"echo"}`},
		{Method: http.MethodPut, Path: "/experts/profiles/3/edit_comment/", Body: `{"comment_id":6,"content":"echo"}`},
		{Method: http.MethodDelete, Path: "/experts/profiles/3/delete_comment/", Body: `{"comment_id":6}`},
	}
	if len(hits) != len(want) {
		t.Fatalf("unexpected calls %#v", hits)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("call %d: got %#v want %#v", i, hits[i], want[i])
		}
	}
}

func TestCommentReactionsToggleThroughThread(t *testing.T) {
	svc, _, api := newService(t, func(w http.ResponseWriter, h hit) {
		switch h.Path {
		case "/experts/profiles/3/comments/":
			writeJSON(w, http.StatusOK, `[{"id":5,"user":9,"text":"Hello","likes_count":1,"is_liked":false,
				"replies":[{"id":6,"user":4,"text":"Hi","dislikes_count":1,"is_disliked":true}]}]`)
		case "/comments/6/like/":
			writeJSON(w, http.StatusOK, `{"is_liked":true,"likes_count":1,"dislikes_count":0}`)
		case "/comments/5/dislike/":
			writeJSON(w, http.StatusOK, `{"is_disliked":true,"likes_count":0,"dislikes_count":1}`)
		default:
			t.Errorf("unexpected %s %s", h.Method, h.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()
	thread := comments.NewThread(svc.ExpertComments(3))
	if err := thread.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	liked, err := thread.React(ctx, 6, comments.ReactionLike)
	if err != nil {
		t.Fatalf("React like: %v", err)
	}
	if liked.Reactions != (comments.Reactions{Likes: 1, Liked: true}) {
		t.Fatalf("liking should replace the dislike, got %#v", liked.Reactions)
	}
	disliked, err := thread.React(ctx, 5, comments.ReactionDislike)
	if err != nil {
		t.Fatalf("React dislike: %v", err)
	}
	if disliked.Reactions != (comments.Reactions{Dislikes: 1, Disliked: true}) {
		t.Fatalf("unexpected tally %#v", disliked.Reactions)
	}
	if root := thread.Roots()[0]; root.Body != "Hello" || len(root.Replies) != 1 || !root.Replies[0].Reactions.Liked {
		t.Fatalf("tree not updated in place: %#v", root)
	}

	for _, h := range api.all()[1:] {
		if h.Method != http.MethodPost || h.Body != "" {
			t.Errorf("reaction should be a bodiless POST, got %#v", h)
		}
	}
}

func TestReactToCommentValidatesLocally(t *testing.T) {
	svc, _, api := newService(t, func(w http.ResponseWriter, h hit) {
		t.Errorf("unexpected call %s %s", h.Method, h.Path)
	})
	ctx := context.Background()
	if _, err := svc.ReactToComment(ctx, 0, comments.ReactionLike); !errors.Is(err, apiclient.ErrValidation) {
		t.Fatalf("expected validation error for id, got %v", err)
	}
	if _, err := svc.ReactToComment(ctx, 3, comments.Reaction("meh")); !errors.Is(err, apiclient.ErrValidation) {
		t.Fatalf("expected validation error for reaction, got %v", err)
	}
	if n := len(api.all()); n != 0 {
		t.Fatalf("expected no calls, got %d", n)
	}
}
