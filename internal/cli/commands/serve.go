package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/cli/config"
	"github.com/conduit-lang/explorer/internal/web/server"
)

var (
	serveHost string
	servePort int
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web explorer and JSON API",
		Long: `Start the HTTP server.

Routes:
  /collections                  collection index
  /collections/{name}           table with ?q=, ?sort=[-]col, ?page=
  /collections/{name}/{id}      item detail
  /api/...                      the same pages as JSON
  /healthz                      liveness
  /debug/pprof                  profiler, when server.pprof is set

server.rate_limit caps /api requests per client per minute.

The server drains in-flight requests on SIGINT or SIGTERM.`,
		Example: `  explorer serve
  explorer serve --port 9000
  EXPLORER_SOURCE_URL=https://cms.example.com explorer serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (default server.host)")
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, func(cfg *config.Config) {
		// Use config values unless overridden
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
	})
	if err != nil {
		return err
	}
	closeApp := sync.OnceValue(a.Close)
	defer closeApp()

	handler, err := a.Handler()
	if err != nil {
		return err
	}

	sc := server.DefaultConfig(handler)
	sc.Address = a.Config.Server.Address()
	sc.Logger = a.Logger.Named("server")
	if t := a.Config.Server.ReadTimeout; t > 0 {
		sc.ReadTimeout = t
	}
	if t := a.Config.Server.WriteTimeout; t > 0 {
		// Leave room for the timeout middleware to write its 503.
		sc.WriteTimeout = t + 5*time.Second
	}

	srv, err := server.New(sc)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	if noColor {
		successColor.DisableColor()
		infoColor.DisableColor()
	}
	out := cmd.OutOrStdout()
	successColor.Fprintf(out, "Serving %s\n", a.Config.Theme.Title)
	infoColor.Fprintf(out, "Open %s/collections\n", srv.URL())

	gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
		Timeout: 10 * time.Second,
		Logger:  sc.Logger,
	})
	gs.RegisterHook(func(ctx context.Context) error {
		if err := closeApp(); err != nil {
			return fmt.Errorf("close source: %w", err)
		}
		a.Logger.Debug("source closed", zap.String("kind", a.Config.Source.Kind))
		return nil
	})
	return gs.Run(cmd.Context())
}
