// Command pipedash serves pipeline database tables as interactive web
// dashboards.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vathes-labs/pipedash/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
