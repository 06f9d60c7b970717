package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
)

func newRateCommand(ctx *commandContext) *cobra.Command {
	var podcastID, expertID int64

	cmd := &cobra.Command{
		Use:   "rate <score>",
		Short: "Rate a podcast or expert from 1 to 5",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return &usageError{msg: "score must be a number from 1 to 5"}
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				var r marketplace.Rating
				if podcastID != 0 && expertID == 0 {
					r, err = svc.RatePodcast(cmd.Context(), podcastID, score)
				} else if expertID != 0 && podcastID == 0 {
					r, err = svc.RateExpert(cmd.Context(), expertID, score)
				} else {
					return &usageError{msg: "specify exactly one of --podcast or --expert"}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved rating %d (%d/5)\n", r.ID, r.Score)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&podcastID, "podcast", 0, "Podcast id")
	cmd.Flags().Int64Var(&expertID, "expert", 0, "Expert profile id")
	return cmd
}

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	ratingsCmd := &cobra.Command{
		Use:   "ratings",
		Short: "Your ratings",
	}

	var jsonOut bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				ratings, err := svc.ListRatings(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, ratings)
				}
				rows := make([][]string, 0, len(ratings))
				for _, r := range ratings {
					rows = append(rows, []string{fmt.Sprint(r.ID), formatRef(r.Podcast), formatRef(r.Expert), fmt.Sprint(r.Score)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Podcast", "Expert", "Score"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete <rating-id>",
		Short: "Withdraw a rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "rating")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.DeleteRating(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted rating %d\n", id)
				return nil
			})
		},
	}

	ratingsCmd.AddCommand(listCmd, deleteCmd)
	return ratingsCmd
}
