package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
)

func newBookmarksCommand(ctx *commandContext) *cobra.Command {
	bookmarksCmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bookmark"},
		Short:   "Saved podcasts and experts",
	}

	bookmarksCmd.AddCommand(newBookmarkListCommand(ctx))
	bookmarksCmd.AddCommand(newBookmarkAddCommand(ctx))
	bookmarksCmd.AddCommand(newBookmarkRemoveCommand(ctx))

	return bookmarksCmd
}

func newBookmarkListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your bookmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				bookmarks, err := svc.Bookmarks(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, bookmarks)
				}
				out := cmd.OutOrStdout()
				if len(bookmarks) == 0 {
					fmt.Fprintln(out, "No bookmarks yet")
					return nil
				}
				rows := make([][]string, 0, len(bookmarks))
				for _, b := range bookmarks {
					rows = append(rows, []string{fmt.Sprint(b.ID), formatRef(b.Podcast), formatRef(b.Expert)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Podcast", "Expert"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func formatRef(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func newBookmarkAddCommand(ctx *commandContext) *cobra.Command {
	var target marketplace.BookmarkTarget

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Bookmark a podcast or expert",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				b, err := svc.AddBookmark(cmd.Context(), target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added bookmark %d\n", b.ID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&target.PodcastID, "podcast", 0, "Podcast id")
	cmd.Flags().Int64Var(&target.ExpertID, "expert", 0, "Expert profile id")
	return cmd
}

func newBookmarkRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <bookmark-id>",
		Short: "Remove a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "bookmark")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.RemoveBookmark(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark %d\n", id)
				return nil
			})
		},
	}
}
