package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
)

func newCollaborationsCommand(ctx *commandContext) *cobra.Command {
	collabCmd := &cobra.Command{
		Use:     "collabs",
		Aliases: []string{"collab", "collaborations"},
		Short:   "Send and answer collaboration requests",
	}

	collabCmd.AddCommand(newCollabListCommand(ctx))
	collabCmd.AddCommand(newCollabRequestCommand(ctx))
	collabCmd.AddCommand(newCollabRespondCommand(ctx, "accept", marketplace.CollaborationAccepted))
	collabCmd.AddCommand(newCollabRespondCommand(ctx, "reject", marketplace.CollaborationRejected))
	collabCmd.AddCommand(newCollabCancelCommand(ctx))

	return collabCmd
}

func newCollabListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collaboration requests you sent or received",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				collabs, err := svc.Collaborations(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, collabs)
				}
				out := cmd.OutOrStdout()
				if len(collabs) == 0 {
					fmt.Fprintln(out, "No collaboration requests")
					return nil
				}
				rows := make([][]string, 0, len(collabs))
				for _, c := range collabs {
					rows = append(rows, []string{
						fmt.Sprint(c.ID),
						fmt.Sprint(c.Sender),
						fmt.Sprint(c.Receiver),
						formatRef(c.Podcast),
						c.Status,
						truncate(c.Message, 40),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "From", "To", "Podcast", "Status", "Message"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCollabRequestCommand(ctx *commandContext) *cobra.Command {
	var (
		input marketplace.CollaborationInput
		date  string
	)

	cmd := &cobra.Command{
		Use:   "request <user-id> <message...>",
		Short: "Ask another user to collaborate",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			receiver, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			input.Receiver = receiver
			input.Message = strings.Join(args[1:], " ")
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return &usageError{msg: "invalid --date (want YYYY-MM-DD): " + date}
				}
				input.Date = parsed
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				c, err := svc.RequestCollaboration(cmd.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sent collaboration request %d to user %d\n", c.ID, receiver)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&input.PodcastID, "podcast", 0, "Podcast the collaboration is for")
	cmd.Flags().StringVar(&input.Title, "title", "", "Short title for the request")
	cmd.Flags().StringVar(&date, "date", "", "Preferred date (YYYY-MM-DD)")
	return cmd
}

func newCollabRespondCommand(ctx *commandContext, use, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <request-id>",
		Short: fmt.Sprintf("Mark a received request as %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				c, err := svc.RespondToCollaboration(cmd.Context(), id, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Collaboration request %d is now %s\n", id, orPlaceholder(c.Status))
				return nil
			})
		},
	}
}

func newCollabCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <request-id>",
		Short: "Withdraw a collaboration request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.CancelCollaboration(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled collaboration request %d\n", id)
				return nil
			})
		},
	}
}
