package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit your podcaster or expert profile",
	}

	profileCmd.AddCommand(newProfileShowCommand(ctx))
	profileCmd.AddCommand(newProfileSetCommand(ctx))

	return profileCmd
}

// profileKind picks the profile flavour from the cached user type.
func profileKind(cmd *cobra.Command, svc *marketplace.Service) (string, error) {
	userType, ok, err := svc.Session().UserType(cmd.Context())
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("not logged in; run `podmatch auth login` first")
	}
	return userType, nil
}

func newProfileShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				kind, err := profileKind(cmd, svc)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if kind == marketplace.UserTypeExpert {
					p, err := svc.MyExpertProfile(cmd.Context())
					if errors.Is(err, marketplace.ErrNoProfile) {
						fmt.Fprintln(out, "No expert profile yet; create one with `podmatch profile set --name ... --bio ...`")
						return nil
					}
					if err != nil {
						return err
					}
					if jsonOut {
						return writeJSON(cmd, p)
					}
					fmt.Fprintln(out, renderExpert(p))
					return nil
				}

				p, err := svc.MyPodcasterProfile(cmd.Context())
				if errors.Is(err, marketplace.ErrNoProfile) {
					fmt.Fprintln(out, "No podcaster profile yet; create one with `podmatch profile set --bio ...`")
					return nil
				}
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, p)
				}
				fmt.Fprintln(out, renderFields([][2]string{
					{"ID", fmt.Sprint(p.ID)},
					{"Bio", p.Bio},
					{"Website", p.Website},
					{"Podcasts", fmt.Sprint(len(p.Podcasts))},
				}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newProfileSetCommand(ctx *commandContext) *cobra.Command {
	var (
		name       string
		bio        string
		website    string
		expertise  string
		years      int
		categories []int64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				kind, err := profileKind(cmd, svc)
				if err != nil {
					return err
				}
				if kind == marketplace.UserTypeExpert {
					p, err := svc.SaveExpertProfile(cmd.Context(), marketplace.ExpertInput{
						Name:            name,
						Bio:             bio,
						Expertise:       expertise,
						ExperienceYears: years,
						Website:         website,
						CategoryIDs:     categories,
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Saved expert profile %d\n", p.ID)
					return nil
				}
				p, err := svc.SavePodcasterProfile(cmd.Context(), marketplace.PodcasterInput{Bio: bio, Website: website})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved podcaster profile %d\n", p.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (experts)")
	cmd.Flags().StringVar(&bio, "bio", "", "Profile bio")
	cmd.Flags().StringVar(&website, "website", "", "Website URL")
	cmd.Flags().StringVar(&expertise, "expertise", "", "Areas of expertise (experts)")
	cmd.Flags().IntVar(&years, "years", 0, "Years of experience (experts)")
	cmd.Flags().Int64SliceVar(&categories, "category", nil, "Category ids (experts, repeatable)")
	return cmd
}
