// Package cached decorates a source.Source with a read-through cache.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/cache"
	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// Source serves reads from a cache and falls back to the wrapped source
// on a miss. Errors are never cached. A cache that fails is logged and
// bypassed.
type Source struct {
	next   source.Source
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// New wraps next. A nil store returns next unchanged.
func New(next source.Source, store cache.Cache, ttl time.Duration, logger *zap.Logger) source.Source {
	if store == nil {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{next: next, cache: store, ttl: ttl, logger: logger}
}

// ListCollections implements source.Source.
func (s *Source) ListCollections(ctx context.Context) ([]source.Collection, error) {
	var out []source.Collection
	err := s.load(ctx, "collections", &out, func() (any, error) {
		return s.next.ListCollections(ctx)
	})
	return out, err
}

// FetchCollectionSchema implements source.Source.
func (s *Source) FetchCollectionSchema(ctx context.Context, name string) ([]source.FieldDescriptor, error) {
	var out []source.FieldDescriptor
	err := s.load(ctx, "schema:"+name, &out, func() (any, error) {
		return s.next.FetchCollectionSchema(ctx, name)
	})
	return out, err
}

// FetchRows implements source.Source.
func (s *Source) FetchRows(ctx context.Context, name string, limit int) ([]grid.Row, error) {
	var out []grid.Row
	err := s.load(ctx, "rows:"+name+":"+strconv.Itoa(limit), &out, func() (any, error) {
		return s.next.FetchRows(ctx, name, limit)
	})
	return out, err
}

// FetchRow implements source.Source.
func (s *Source) FetchRow(ctx context.Context, name, id string) (grid.Row, error) {
	var out grid.Row
	err := s.load(ctx, "row:"+name+":"+digest(id), &out, func() (any, error) {
		return s.next.FetchRow(ctx, name, id)
	})
	return out, err
}

// Invalidate drops every cached entry.
func (s *Source) Invalidate(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// Close closes the wrapped source and the cache.
func (s *Source) Close() error {
	err := s.next.Close()
	if cerr := s.cache.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Source) load(ctx context.Context, key string, dst any, fetch func() (any, error)) error {
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		jerr := json.Unmarshal(raw, dst)
		if jerr == nil {
			s.logger.Debug("cache hit", zap.String("key", key))
			return nil
		}
		s.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(jerr))
	case !cache.IsMiss(err):
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := fetch()
	if err != nil {
		return err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cached: encode %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("cached: decode %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func digest(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

// Invalidator is implemented by sources that can drop cached state.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

var (
	_ source.Source = (*Source)(nil)
	_ Invalidator   = (*Source)(nil)
)
