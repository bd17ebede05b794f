package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vathes-labs/pipedash/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start a local web server rendering the configured pipeline tables
as interactive dashboards.

Each tables entry in pipedash.yaml becomes one dashboard: a filterable
grid over the table, with add/update/delete actions when editable.`,
		Example: `  # Serve the tables from ./pipedash.yaml
  pipedash serve

  # Serve on a custom port
  pipedash serve --port 3000

  # Serve without auto-opening the browser
  pipedash serve --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8610)")
	cmd.Flags().Bool("watch", true, "Reload tables when the config file changes")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	if len(cfg.Tables) == 0 {
		return fmt.Errorf("no tables configured; add a tables section to %s", GetConfigPath(cmd.Context()))
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ad, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = ad.Close() }()

	server := ui.NewServer(ui.Config{
		Adapter:    ad,
		Cfg:        cfg,
		ConfigPath: GetConfigPath(cmd.Context()),
		Logger:     logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if !opts.NoBrowser {
		go openBrowser(url)
	}

	fmt.Printf("Starting dashboard server on %s\n", url)
	fmt.Println("Press Ctrl+C to stop")

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
