// Package app wires configuration into a source, a service and the
// HTTP handler shared by every command.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/cache"
	"github.com/conduit-lang/explorer/internal/cli/config"
	"github.com/conduit-lang/explorer/internal/explorer"
	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/internal/source/cached"
	"github.com/conduit-lang/explorer/internal/source/directus"
	"github.com/conduit-lang/explorer/internal/source/memory"
	"github.com/conduit-lang/explorer/internal/source/mongo"
	"github.com/conduit-lang/explorer/internal/source/sqldb"
	"github.com/conduit-lang/explorer/internal/web/middleware"
	"github.com/conduit-lang/explorer/internal/web/profiling"
	"github.com/conduit-lang/explorer/internal/web/ratelimit"
	"github.com/conduit-lang/explorer/internal/web/router"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// App is a configured explorer.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Source  source.Source
	Service *explorer.Service

	limiter *ratelimit.TokenBucket
}

// New opens the configured source and builds the service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src, err := OpenSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithSource(cfg, src, logger)
}

// NewWithSource builds the service over an already opened source.
func NewWithSource(cfg *config.Config, src source.Source, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	formatter, err := Formatter(cfg.Grid)
	if err != nil {
		return nil, err
	}
	svc := explorer.NewService(src, explorer.Config{
		FetchLimit:           cfg.Source.FetchLimit,
		PageSize:             cfg.Grid.PageSize,
		EmptyMessage:         cfg.Grid.EmptyMessage,
		FallbackEmptyOnError: cfg.Grid.FallbackEmptyOnError,
		Formatter:            formatter,
		Logger:               logger.Named("explorer"),
	})
	return &App{Config: cfg, Logger: logger, Source: src, Service: svc}, nil
}

// OpenSource connects to the configured backend and wraps it in the
// configured cache.
func OpenSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.Source, error) {
	sc := cfg.Source
	srcLogger := logger.Named("source").With(zap.String("kind", sc.Kind))

	var (
		src source.Source
		err error
	)
	switch sc.Kind {
	case config.SourceDirectus:
		src, err = directus.New(directus.Config{
			URL:             sc.URL,
			Token:           sc.Token,
			Timeout:         sc.Timeout,
			Fields:          sc.Fields,
			ExpandRelations: true,
			DefaultLimit:    sc.FetchLimit,
		}, directus.WithLogger(srcLogger))
	case config.SourceSQL:
		dbc := sqldb.DefaultConfig()
		dbc.Driver = sc.Driver
		dbc.DSN = sc.DSN
		dbc.DefaultLimit = sc.FetchLimit
		if sc.Timeout > 0 {
			dbc.QueryTimeout = sc.Timeout
		}
		src, err = sqldb.Open(ctx, dbc, srcLogger)
	case config.SourceMongo:
		mc := mongo.DefaultConfig()
		mc.URI = sc.DSN
		mc.Database = sc.Database
		mc.DefaultLimit = sc.FetchLimit
		if sc.Timeout > 0 {
			mc.Timeout = sc.Timeout
		}
		src, err = mongo.Open(ctx, mc, srcLogger)
	case config.SourceFile:
		src, err = memory.Load(sc.Path)
	default:
		err = fmt.Errorf("unknown source kind %q", sc.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", sc.Kind, err)
	}

	store, err := cache.New(cache.Options{
		Backend: cfg.Cache.Backend,
		CacheConfig: cache.CacheConfig{
			DefaultTTL: cfg.Cache.TTL,
			Prefix:     cfg.Cache.Prefix,
		},
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		},
	})
	if err != nil {
		src.Close()
		return nil, err
	}
	return cached.New(src, store, cfg.Cache.TTL, logger.Named("cache")), nil
}

// Formatter builds the cell formatter from the grid settings.
func Formatter(gc config.GridConfig) (*grid.Formatter, error) {
	fc := grid.DefaultFormatterConfig()
	if gc.DateLayout != "" {
		fc.DateLayout = gc.DateLayout
	}
	if gc.DateTimeLayout != "" {
		fc.DateTimeLayout = gc.DateTimeLayout
	}
	if gc.Timezone != "" {
		loc, err := time.LoadLocation(gc.Timezone)
		if err != nil {
			return nil, fmt.Errorf("grid.timezone: %w", err)
		}
		fc.Location = loc
	}
	return grid.NewFormatterWithConfig(fc), nil
}

// Theme converts the theme settings.
func Theme(tc config.ThemeConfig) explorer.Theme {
	return explorer.Theme{
		Title:      tc.Title,
		Accent:     tc.Accent,
		Background: tc.Background,
		Foreground: tc.Foreground,
		Muted:      tc.Muted,
	}
}

// Handler returns the explorer routes behind request id, recovery,
// access logging and a per-request timeout. server.rate_limit throttles
// /api and server.pprof mounts the profiler.
func (a *App) Handler() (http.Handler, error) {
	h, err := explorer.NewHandler(a.Service, Theme(a.Config.Theme), a.Logger.Named("http"))
	if err != nil {
		return nil, err
	}
	if n := a.Config.Server.RateLimit; n > 0 {
		if a.limiter != nil {
			a.limiter.Close()
		}
		cfg := ratelimit.DefaultConfig()
		cfg.Capacity = n
		a.limiter = ratelimit.NewTokenBucket(cfg)
		h.UseAPI(ratelimit.Middleware(a.limiter, a.Logger.Named("ratelimit")))
	}

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.Recovery(a.Logger),
		middleware.Logging(a.Logger.Named("access"), "/healthz"),
	)
	if t := a.Config.Server.WriteTimeout; t > 0 {
		chain.Use(middleware.Timeout(t))
	}

	r := router.NewRouter()
	h.Routes(r)
	if a.Config.Server.Pprof {
		profiling.Register(r)
		a.Logger.Warn("profiling enabled", zap.String("path", profiling.Prefix))
	}

	for _, route := range r.Routes() {
		a.Logger.Debug("route", zap.String("method", route.Method), zap.String("pattern", route.Pattern))
	}
	return chain.Then(r), nil
}

// Close releases the source, its cache and the rate limiter.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Close()
	}
	return a.Source.Close()
}
