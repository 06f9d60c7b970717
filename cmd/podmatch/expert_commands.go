package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
)

func newExpertsCommand(ctx *commandContext) *cobra.Command {
	expertsCmd := &cobra.Command{
		Use:     "experts",
		Aliases: []string{"expert"},
		Short:   "Browse experts",
	}

	expertsCmd.AddCommand(newExpertListCommand(ctx))
	expertsCmd.AddCommand(newExpertFeaturedCommand(ctx))
	expertsCmd.AddCommand(newExpertShowCommand(ctx))
	expertsCmd.AddCommand(newExpertCategoriesCommand(ctx))
	expertsCmd.AddCommand(newExpertReactCommand(ctx))

	return expertsCmd
}

func newExpertListCommand(ctx *commandContext) *cobra.Command {
	var filter marketplace.ExpertFilter
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approved experts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				experts, err := svc.ListExperts(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printExperts(cmd, experts, jsonOut)
			})
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Search name, bio, and expertise")
	cmd.Flags().Int64Var(&filter.CategoryID, "category", 0, "Filter by category id")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newExpertFeaturedCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured experts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				experts, err := svc.FeaturedExperts(cmd.Context())
				if err != nil {
					return err
				}
				return printExperts(cmd, experts, jsonOut)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printExperts(cmd *cobra.Command, experts []marketplace.ExpertProfile, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, experts)
	}
	out := cmd.OutOrStdout()
	if len(experts) == 0 {
		fmt.Fprintln(out, "No experts found")
		return nil
	}
	rows := make([][]string, 0, len(experts))
	for _, e := range experts {
		rows = append(rows, []string{
			fmt.Sprint(e.ID),
			e.Name,
			truncate(e.Expertise, summaryWidth),
			categoryNames(e.Categories),
			fmt.Sprint(e.ExperienceYears),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Expertise", "Categories", "Years"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

func categoryNames(categories []marketplace.Category) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func newExpertShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expert profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "expert")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				e, err := svc.GetExpert(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, e)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderExpert(e))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderExpert(e marketplace.ExpertProfile) string {
	username := ""
	if e.User != nil {
		username = e.User.Username
	}
	return renderFields([][2]string{
		{"ID", fmt.Sprint(e.ID)},
		{"Name", e.Name},
		{"User", username},
		{"Expertise", e.Expertise},
		{"Categories", categoryNames(e.Categories)},
		{"Experience", fmt.Sprintf("%d years", e.ExperienceYears)},
		{"Website", e.Website},
		{"Bio", e.Bio},
		{"Views", fmt.Sprint(e.TotalViews)},
		{"Bookmarks", fmt.Sprint(e.TotalBookmarks)},
	})
}

func newExpertCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List expert categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				categories, err := svc.ExpertCategories(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, categories)
				}
				rows := make([][]string, 0, len(categories))
				for _, c := range categories {
					rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, truncate(c.Description, summaryWidth)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Description"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newExpertReactCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "react <id> <like|dislike>",
		Short: "Like or dislike an expert",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "expert")
			if err != nil {
				return err
			}
			reaction := strings.ToLower(strings.TrimSpace(args[1]))
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.ReactToExpert(cmd.Context(), id, reaction); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for expert %d\n", reaction, id)
				return nil
			})
		},
	}
}
