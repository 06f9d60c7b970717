package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podmatch/internal/marketplace"
	"podmatch/internal/messaging"
)

func newMessagesCommand(ctx *commandContext) *cobra.Command {
	messagesCmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Direct messages",
	}

	messagesCmd.AddCommand(newConversationsCommand(ctx))
	messagesCmd.AddCommand(newChatCommand(ctx))
	messagesCmd.AddCommand(newSendCommand(ctx))
	messagesCmd.AddCommand(newUnreadCommand(ctx))
	messagesCmd.AddCommand(newMarkReadCommand(ctx))
	messagesCmd.AddCommand(newWatchCommand(ctx))

	return messagesCmd
}

func newConversationsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List conversations, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				convs, err := svc.Conversations(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, convs)
				}
				out := cmd.OutOrStdout()
				if len(convs) == 0 {
					fmt.Fprintln(out, "No conversations yet")
					return nil
				}
				rows := make([][]string, 0, len(convs))
				for _, c := range convs {
					rows = append(rows, []string{
						fmt.Sprint(c.User.ID),
						c.User.Username,
						truncate(c.LastMessage.Content, summaryWidth),
						fmt.Sprint(c.UnreadCount),
						formatTime(c.LastMessage.Timestamp),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"User ID", "User", "Last message", "Unread", "When"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newChatCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "chat <user-id>",
		Short: "Show the message history with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				chat, err := svc.ChatWith(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, chat)
				}
				out := cmd.OutOrStdout()
				if len(chat.Messages) == 0 {
					fmt.Fprintf(out, "No messages with %s yet\n", orPlaceholder(chat.OtherUser.Username))
					return nil
				}
				printMessages(out, chat.Messages)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printMessages(out io.Writer, messages []marketplace.Message) {
	for _, m := range messages {
		fmt.Fprintf(out, "[%s] %s: %s\n", formatTime(m.Timestamp), orPlaceholder(m.Sender.Username), m.Content)
	}
}

func newSendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "send <user-id> <text...>",
		Short: "Send a direct message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			content := strings.Join(args[1:], " ")
			return ctx.withService(func(svc *marketplace.Service) error {
				msg, err := svc.SendMessage(cmd.Context(), userID, content)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d\n", msg.ID)
				return nil
			})
		},
	}
}

func newUnreadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Print the number of unread messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *marketplace.Service) error {
				count, err := svc.UnreadCount(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}
}

func newMarkReadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "read <user-id>",
		Short: "Mark every message from a user as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				if err := svc.MarkAllRead(cmd.Context(), userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked messages from user %d as read\n", userID)
				return nil
			})
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <user-id>",
		Short: "Follow a conversation until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = cfg.PollInterval()
			}
			return ctx.withService(func(svc *marketplace.Service) error {
				out := cmd.OutOrStdout()
				errOut := cmd.ErrOrStderr()
				var lastPrinted int64

				poller := &messaging.Poller{
					Interval: interval,
					Logger:   logger,
					Fetch: func(c context.Context) (marketplace.Chat, error) {
						return svc.ChatWith(c, userID)
					},
					OnUpdate: func(chat marketplace.Chat) {
						fresh := newerThan(chat.Messages, lastPrinted)
						printMessages(out, fresh)
						lastPrinted = chat.LastID()
					},
					OnError: func(err error) {
						fmt.Fprintf(errOut, "poll failed: %v\n", err)
					},
				}

				fmt.Fprintf(errOut, "Watching messages with user %d every %s (Ctrl+C to stop)\n", userID, interval)
				if err := poller.Start(cmd.Context()); err != nil {
					return err
				}
				<-cmd.Context().Done()
				poller.Stop()
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (defaults to messages.poll_interval_seconds)")
	return cmd
}

// newerThan returns the messages after id. A chat that shrank or no longer
// contains id is returned whole.
func newerThan(messages []marketplace.Message, id int64) []marketplace.Message {
	if id == 0 {
		return messages
	}
	for i, m := range messages {
		if m.ID == id {
			return messages[i+1:]
		}
	}
	return messages
}
