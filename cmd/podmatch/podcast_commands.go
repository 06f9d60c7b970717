package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
)

func newPodcastsCommand(ctx *commandContext) *cobra.Command {
	podcastsCmd := &cobra.Command{
		Use:     "podcasts",
		Aliases: []string{"podcast"},
		Short:   "Browse and manage podcasts",
	}

	podcastsCmd.AddCommand(newPodcastListCommand(ctx))
	podcastsCmd.AddCommand(newPodcastFeaturedCommand(ctx))
	podcastsCmd.AddCommand(newPodcastShowCommand(ctx))
	podcastsCmd.AddCommand(newPodcastCreateCommand(ctx))
	podcastsCmd.AddCommand(newPodcastDeleteCommand(ctx))
	podcastsCmd.AddCommand(newPodcastLikeCommand(ctx, true))
	podcastsCmd.AddCommand(newPodcastLikeCommand(ctx, false))

	return podcastsCmd
}

func newPodcastListCommand(ctx *commandContext) *cobra.Command {
	var filter marketplace.PodcastFilter
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approved podcasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				podcasts, err := svc.ListPodcasts(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printPodcasts(cmd, podcasts, jsonOut)
			})
		},
	}

	cmd.Flags().Int64Var(&filter.CategoryID, "category", 0, "Filter by category id")
	cmd.Flags().StringVar(&filter.Ordering, "order", "", "Server ordering, e.g. -views or created_at")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newPodcastFeaturedCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured podcasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				podcasts, err := svc.FeaturedPodcasts(cmd.Context())
				if err != nil {
					return err
				}
				return printPodcasts(cmd, podcasts, jsonOut)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printPodcasts(cmd *cobra.Command, podcasts []marketplace.Podcast, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, podcasts)
	}
	out := cmd.OutOrStdout()
	if len(podcasts) == 0 {
		fmt.Fprintln(out, "No podcasts found")
		return nil
	}
	rows := make([][]string, 0, len(podcasts))
	for _, p := range podcasts {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		rows = append(rows, []string{
			fmt.Sprint(p.ID),
			truncate(p.Title, summaryWidth),
			category,
			fmt.Sprint(p.Views),
			formatRating(p.AverageRating),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Title", "Category", "Views", "Rating"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func newPodcastShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one podcast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "podcast")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				p, err := svc.GetPodcast(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, p)
				}
				category := ""
				if p.Category != nil {
					category = p.Category.Name
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFields([][2]string{
					{"ID", fmt.Sprint(p.ID)},
					{"Title", p.Title},
					{"Category", category},
					{"Description", p.Description},
					{"Link", p.Link},
					{"Views", fmt.Sprint(p.Views)},
					{"Rating", formatRating(p.AverageRating)},
					{"Bookmarks", fmt.Sprint(p.TotalBookmarks)},
					{"Created", formatTime(p.CreatedAt)},
				}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newPodcastCreateCommand(ctx *commandContext) *cobra.Command {
	var in marketplace.PodcastInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a podcast under your podcaster profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				p, err := svc.CreatePodcast(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created podcast %d: %s\n", p.ID, p.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Podcast title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Podcast description")
	cmd.Flags().StringVar(&in.Link, "link", "", "Podcast link")
	cmd.Flags().Int64Var(&in.CategoryID, "category", 0, "Category id")
	return cmd
}

func newPodcastDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your podcasts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "podcast")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.DeletePodcast(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted podcast %d\n", id)
				return nil
			})
		},
	}
}

func newPodcastLikeCommand(ctx *commandContext, like bool) *cobra.Command {
	use, short, verb := "like <id>", "Like a podcast", "Liked"
	if !like {
		use, short, verb = "unlike <id>", "Remove your like from a podcast", "Unliked"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "podcast")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				if like {
					err = svc.LikePodcast(cmd.Context(), id)
				} else {
					err = svc.UnlikePodcast(cmd.Context(), id)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s podcast %d\n", verb, id)
				return nil
			})
		},
	}
}
