package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"podmatch/internal/comments"
	"podmatch/internal/marketplace"
)

const commentIndent = "    "

type commentTarget struct {
	podcastID int64
	expertID  int64
}

func (t commentTarget) validate() error {
	if (t.podcastID == 0) == (t.expertID == 0) {
		return &usageError{msg: "specify exactly one of --podcast or --expert"}
	}
	return nil
}

func (t commentTarget) backend(svc *marketplace.Service) comments.Backend {
	if t.podcastID != 0 {
		return svc.PodcastComments(t.podcastID)
	}
	return svc.ExpertComments(t.expertID)
}

func newCommentsCommand(ctx *commandContext) *cobra.Command {
	var target commentTarget

	commentsCmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Read and write threaded comments on a podcast or expert",
	}
	commentsCmd.PersistentFlags().Int64Var(&target.podcastID, "podcast", 0, "Podcast id")
	commentsCmd.PersistentFlags().Int64Var(&target.expertID, "expert", 0, "Expert profile id")

	commentsCmd.AddCommand(newCommentListCommand(ctx, &target))
	commentsCmd.AddCommand(newCommentPostCommand(ctx, &target))
	commentsCmd.AddCommand(newCommentReplyCommand(ctx, &target))
	commentsCmd.AddCommand(newCommentEditCommand(ctx, &target))
	commentsCmd.AddCommand(newCommentDeleteCommand(ctx, &target))
	commentsCmd.AddCommand(newCommentReactCommand(ctx, &target, comments.ReactionLike))
	commentsCmd.AddCommand(newCommentReactCommand(ctx, &target, comments.ReactionDislike))

	return commentsCmd
}

// withThread builds an unloaded Thread for target.
func (c *commandContext) withThread(cmd *cobra.Command, target *commentTarget, fn func(*marketplace.Service, *comments.Thread) error) error {
	if err := target.validate(); err != nil {
		return err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	return c.withService(func(svc *marketplace.Service) error {
		opts := []comments.ThreadOption{comments.WithMinLength(cfg.Comments.MinLength)}
		if user, ok, err := svc.CurrentUser(cmd.Context()); err == nil && ok {
			opts = append(opts, comments.WithCurrentUser(user.ID))
		}
		return fn(svc, comments.NewThread(target.backend(svc), opts...))
	})
}

// checkBody validates before any request is made.
func (c *commandContext) checkBody(args []string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return comments.ValidateBody(strings.Join(args, " "), cfg.Comments.MinLength)
}

func newCommentListCommand(ctx *commandContext, target *commentTarget) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the comment tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withThread(cmd, target, func(_ *marketplace.Service, thread *comments.Thread) error {
				if err := thread.Load(cmd.Context()); err != nil {
					return err
				}
				roots := thread.Roots()
				if jsonOut {
					return writeJSON(cmd, roots)
				}
				renderCommentTree(cmd.OutOrStdout(), roots, thread.Owned())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderCommentTree(out io.Writer, roots []comments.Node, owned []int64) {
	if len(roots) == 0 {
		fmt.Fprintln(out, "No comments yet")
		return
	}
	mine := make(map[int64]bool, len(owned))
	for _, id := range owned {
		mine[id] = true
	}
	comments.Walk(roots, func(n comments.Node, depth int) bool {
		indent := strings.Repeat(commentIndent, depth)
		header := fmt.Sprintf("#%d %s · %s", n.ID, orPlaceholder(n.Author.Username), formatTime(n.CreatedAt))
		if summary := reactionSummary(n.Reactions); summary != "" {
			header += " · " + summary
		}
		if mine[n.ID] {
			header += " (you)"
		}
		fmt.Fprintf(out, "%s%s\n", indent, header)
		for _, line := range strings.Split(n.Body, "\n") {
			fmt.Fprintf(out, "%s  %s\n", indent, line)
		}
		return true
	})
	fmt.Fprintf(out, "\n%d comments\n", comments.Count(roots))
}

func reactionSummary(r comments.Reactions) string {
	var parts []string
	if r.Likes > 0 {
		parts = append(parts, plural(r.Likes, "like"))
	}
	if r.Dislikes > 0 {
		parts = append(parts, plural(r.Dislikes, "dislike"))
	}
	summary := strings.Join(parts, ", ")
	switch {
	case r.Liked:
		summary += " (liked)"
	case r.Disliked:
		summary += " (disliked)"
	}
	return strings.TrimSpace(summary)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func newCommentPostCommand(ctx *commandContext, target *commentTarget) *cobra.Command {
	return &cobra.Command{
		Use:   "post <text...>",
		Short: "Post a top-level comment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := target.validate(); err != nil {
				return err
			}
			body, err := ctx.checkBody(args)
			if err != nil {
				return err
			}
			return ctx.withThread(cmd, target, func(_ *marketplace.Service, thread *comments.Thread) error {
				n, err := thread.Post(cmd.Context(), body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Posted comment %d\n", n.ID)
				return nil
			})
		},
	}
}

func newCommentReplyCommand(ctx *commandContext, target *commentTarget) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <comment-id> <text...>",
		Short: "Reply to a comment at any depth",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := target.validate(); err != nil {
				return err
			}
			parentID, err := parseID(args[0], "comment")
			if err != nil {
				return err
			}
			body, err := ctx.checkBody(args[1:])
			if err != nil {
				return err
			}
			return ctx.withThread(cmd, target, func(_ *marketplace.Service, thread *comments.Thread) error {
				if err := thread.Load(cmd.Context()); err != nil {
					return err
				}
				if err := thread.StartReply(parentID); err != nil {
					return err
				}
				n, err := thread.Reply(cmd.Context(), body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Replied to comment %d with comment %d\n", parentID, n.ID)
				return nil
			})
		},
	}
}

func newCommentEditCommand(ctx *commandContext, target *commentTarget) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <comment-id> <text...>",
		Short: "Edit one of your comments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := target.validate(); err != nil {
				return err
			}
			id, err := parseID(args[0], "comment")
			if err != nil {
				return err
			}
			body, err := ctx.checkBody(args[1:])
			if err != nil {
				return err
			}
			return ctx.withThread(cmd, target, func(_ *marketplace.Service, thread *comments.Thread) error {
				if err := thread.Load(cmd.Context()); err != nil {
					return err
				}
				if err := thread.StartEdit(id); err != nil {
					return ownershipError(err)
				}
				if _, err := thread.SaveEdit(cmd.Context(), body); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated comment %d\n", id)
				return nil
			})
		},
	}
}

func newCommentDeleteCommand(ctx *commandContext, target *commentTarget) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete one of your comments and its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := target.validate(); err != nil {
				return err
			}
			id, err := parseID(args[0], "comment")
			if err != nil {
				return err
			}
			return ctx.withThread(cmd, target, func(_ *marketplace.Service, thread *comments.Thread) error {
				if err := thread.Load(cmd.Context()); err != nil {
					return err
				}
				roots := thread.Roots()
				removed := len(comments.SubtreeIDs(roots, id))
				if err := thread.Delete(cmd.Context(), id); err != nil {
					return ownershipError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment %d (%d removed)\n", id, removed)
				return nil
			})
		},
	}
}

func ownershipError(err error) error {
	if errors.Is(err, comments.ErrNotOwner) {
		return errors.New("you can only modify your own comments")
	}
	return err
}

func newCommentReactCommand(ctx *commandContext, target *commentTarget, reaction comments.Reaction) *cobra.Command {
	return &cobra.Command{
		Use:   string(reaction) + " <comment-id>",
		Short: fmt.Sprintf("Toggle your %s on a comment", reaction),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := target.validate(); err != nil {
				return err
			}
			id, err := parseID(args[0], "comment")
			if err != nil {
				return err
			}
			return ctx.withThread(cmd, target, func(_ *marketplace.Service, thread *comments.Thread) error {
				if err := thread.Load(cmd.Context()); err != nil {
					return err
				}
				n, err := thread.React(cmd.Context(), id, reaction)
				if err != nil {
					return err
				}
				verb := "Removed " + string(reaction) + " from"
				switch {
				case reaction == comments.ReactionLike && n.Reactions.Liked:
					verb = "Liked"
				case reaction == comments.ReactionDislike && n.Reactions.Disliked:
					verb = "Disliked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s comment %d (%s, %s)\n", verb, id,
					plural(n.Reactions.Likes, "like"), plural(n.Reactions.Dislikes, "dislike"))
				return nil
			})
		},
	}
}
