package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"podmatch/internal/apiclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if hint := errorHint(err); hint != "" {
				fmt.Fprintln(os.Stderr, hint)
			}
		}
		stop()
		os.Exit(1)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "Your session is missing or expired; run `podmatch auth login`."
	case errors.Is(err, apiclient.ErrTransport):
		return "Could not reach the API; check api.base_url or PODMATCH_API_URL."
	default:
		return ""
	}
}
