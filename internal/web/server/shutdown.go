package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook runs after the listener stops, e.g. to close the source.
type ShutdownHook func(ctx context.Context) error

// ShutdownConfig holds graceful shutdown configuration.
type ShutdownConfig struct {
	// Timeout bounds draining requests plus running hooks.
	Timeout time.Duration
	// Signals trigger shutdown. Defaults to SIGINT and SIGTERM.
	Signals []os.Signal
	Logger  *zap.Logger
}

// DefaultShutdownConfig returns a ten second drain on SIGINT or SIGTERM.
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 10 * time.Second,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// GracefulShutdown serves until a signal or context cancellation, then
// drains the server and runs hooks in registration order.
type GracefulShutdown struct {
	server *Server
	config *ShutdownConfig
	logger *zap.Logger

	mu    sync.Mutex
	hooks []ShutdownHook
}

// NewGracefulShutdown wraps server.
func NewGracefulShutdown(server *Server, config *ShutdownConfig) *GracefulShutdown {
	if config == nil {
		config = DefaultShutdownConfig()
	}
	if len(config.Signals) == 0 {
		config.Signals = DefaultShutdownConfig().Signals
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultShutdownConfig().Timeout
	}
	logger := config.Logger
	if logger == nil {
		logger = server.logger
	}
	return &GracefulShutdown{server: server, config: config, logger: logger}
}

// RegisterHook adds a hook run during shutdown.
func (gs *GracefulShutdown) RegisterHook(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, hook)
}

// Run serves until ctx is done, a configured signal arrives or the
// server fails.
func (gs *GracefulShutdown) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, gs.config.Signals...)
	defer stop()

	if err := gs.server.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- gs.server.Serve() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		gs.logger.Info("shutting down", zap.Duration("timeout", gs.config.Timeout))
	}

	return gs.shutdown(errCh)
}

func (gs *GracefulShutdown) shutdown(errCh <-chan error) error {
	ctx, cancel := context.WithTimeout(context.Background(), gs.config.Timeout)
	defer cancel()

	var shutdownErr error
	if err := gs.server.Shutdown(ctx); err != nil {
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		gs.logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := <-errCh; err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	gs.mu.Lock()
	hooks := append([]ShutdownHook(nil), gs.hooks...)
	gs.mu.Unlock()

	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			gs.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
	}

	gs.logger.Info("shutdown complete")
	return shutdownErr
}
