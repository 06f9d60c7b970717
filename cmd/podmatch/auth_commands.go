package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podmatch/internal/config"
	"podmatch/internal/marketplace"
	"podmatch/internal/session"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, register, and inspect the local session",
	}

	authCmd.AddCommand(newLoginCommand(ctx))
	authCmd.AddCommand(newRegisterCommand(ctx))
	authCmd.AddCommand(newVerifyCommand(ctx))
	authCmd.AddCommand(newLogoutCommand(ctx))
	authCmd.AddCommand(newAuthStatusCommand(ctx))
	authCmd.AddCommand(newWhoamiCommand(ctx))

	return authCmd
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the session locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				user, err := svc.Login(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Username, displayUserType(user.UserType))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var req marketplace.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			req.UserType = strings.ToLower(strings.TrimSpace(req.UserType))
			if err := req.Validate(); err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				user, err := svc.Register(cmd.Context(), req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Registered %s as %s\n", user.Username, displayUserType(req.UserType))
				fmt.Fprintln(out, "Check your email and run `podmatch auth verify <token>` before logging in.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	cmd.Flags().StringVar(&req.UserType, "type", marketplace.UserTypePodcaster, "Account type: podcaster or expert")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Confirm an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				msg, err := svc.VerifyEmail(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if msg == "" {
					msg = "Email verified"
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newAuthStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session without contacting the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(cfg *config.Config, sess *session.Session) error {
				snap, err := loadSessionSnapshot(cmd.Context(), cfg.API.BaseURL, sess)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderStatusRows(snap.rows(time.Now()), shouldColorize(out)))
				return nil
			})
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Fetch the current user from the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				user, err := svc.Me(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, user)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFields([][2]string{
					{"ID", fmt.Sprint(user.ID)},
					{"Username", user.Username},
					{"Email", user.Email},
					{"Type", displayUserType(user.UserType)},
				}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
