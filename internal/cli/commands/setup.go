package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/app"
	"github.com/conduit-lang/explorer/internal/cli/config"
	"github.com/conduit-lang/explorer/internal/cli/ui"
	"github.com/conduit-lang/explorer/internal/explorer"
	"github.com/conduit-lang/explorer/internal/logging"
	"github.com/conduit-lang/explorer/internal/source"
)

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	return logging.New(lc)
}

// openApp loads the configuration, lets the command adjust it and opens
// the source. Failures are reported on stderr.
func openApp(cmd *cobra.Command, adjust func(*config.Config)) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
		return nil, &reportedError{err: err}
	}
	if adjust != nil {
		adjust(cfg)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		fmt.Fprint(cmd.ErrOrStderr(), ui.SourceError(err.Error(), noColor))
		return nil, &reportedError{err: err}
	}
	return a, nil
}

// reportFetchError explains a failed fetch on stderr. Unknown
// collections get spelling suggestions.
func reportFetchError(cmd *cobra.Command, svc *explorer.Service, name, id string, err error) error {
	w := cmd.ErrOrStderr()
	if !errors.Is(err, source.ErrNotFound) {
		fmt.Fprint(w, ui.SourceError(err.Error(), noColor))
		return &reportedError{err: err}
	}

	names := collectionNames(cmd.Context(), svc)
	if id != "" && slices.Contains(names, name) {
		fmt.Fprint(w, ui.ItemNotFoundError(name, id, noColor))
	} else {
		fmt.Fprint(w, ui.CollectionNotFoundError(name, ui.Suggest(name, names, 3), noColor))
	}
	return &reportedError{err: err}
}

func collectionNames(ctx context.Context, svc *explorer.Service) []string {
	collections, err := svc.Collections(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = c.Name
	}
	return names
}

// withSpinner shows a spinner on stderr while fn runs, unless output is
// not a color terminal.
func withSpinner(cmd *cobra.Command, message string, fn func() error) error {
	if noColor || color.NoColor {
		return fn()
	}
	return ui.WithSpinner(cmd.ErrOrStderr(), message, noColor, fn)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
