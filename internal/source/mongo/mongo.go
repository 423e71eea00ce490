// Package mongo browses MongoDB collections. Documents become rows in
// field order, and the schema is inferred from a sample of documents.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// Config holds the connection settings.
type Config struct {
	// URI is a mongodb:// or mongodb+srv:// connection string.
	URI string
	// Database overrides the database named in the URI path.
	Database string
	// SampleSize is how many documents schema inference reads.
	SampleSize int
	// Timeout bounds each operation.
	Timeout time.Duration
	// DefaultLimit is used when FetchRows is called with limit <= 0.
	DefaultLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		URI:          "mongodb://localhost:27017",
		SampleSize:   20,
		Timeout:      15 * time.Second,
		DefaultLimit: 100,
	}
}

// Source reads collections of one database.
type Source struct {
	client *mongo.Client
	db     *mongo.Database
	config Config
	logger *zap.Logger
}

// Open connects to the server and verifies it responds.
func Open(ctx context.Context, config Config, logger *zap.Logger) (*Source, error) {
	def := DefaultConfig()
	if config.URI == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}
	if config.SampleSize <= 0 {
		config.SampleSize = def.SampleSize
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = def.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	name, err := databaseName(config)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	logger.Info("connected to mongo", zap.String("database", name))
	return &Source{
		client: client,
		db:     client.Database(name),
		config: config,
		logger: logger,
	}, nil
}

// databaseName picks the configured database, else the one in the URI.
func databaseName(config Config) (string, error) {
	if config.Database != "" {
		return config.Database, nil
	}
	cs, err := connstring.Parse(config.URI)
	if err != nil {
		return "", fmt.Errorf("mongo: parse uri: %w", err)
	}
	if cs.Database == "" {
		return "", fmt.Errorf("mongo: no database in uri and none configured")
	}
	return cs.Database, nil
}

// ListCollections returns the non-system collections sorted by name.
func (s *Source) ListCollections(ctx context.Context) ([]source.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo: list collections: %w", err)
	}
	return collections(names), nil
}

func collections(names []string) []source.Collection {
	out := make([]source.Collection, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, "system.") {
			continue
		}
		out = append(out, source.Collection{Name: n})
	}
	sortCollections(out)
	return out
}

// FetchCollectionSchema infers fields from a sample of documents. An
// empty or missing collection is source.ErrNotFound.
func (s *Source) FetchCollectionSchema(ctx context.Context, name string) ([]source.FieldDescriptor, error) {
	docs, err := s.find(ctx, name, int64(s.config.SampleSize))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("mongo: collection %q: %w", name, source.ErrNotFound)
	}
	return inferFields(docs), nil
}

// FetchRows returns up to limit documents in natural order.
func (s *Source) FetchRows(ctx context.Context, name string, limit int) ([]grid.Row, error) {
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	start := time.Now()
	docs, err := s.find(ctx, name, int64(limit))
	if err != nil {
		return nil, err
	}
	rows := make([]grid.Row, len(docs))
	for i, doc := range docs {
		rows[i] = toRow(doc)
	}
	s.logger.Debug("mongo documents fetched",
		zap.String("collection", name),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)),
	)
	return rows, nil
}

// FetchRow returns the document whose _id matches id, trying it as an
// ObjectID, a string and an integer.
func (s *Source) FetchRow(ctx context.Context, name, id string) (grid.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idCandidates(id)}}}}
	var doc bson.D
	err := s.db.Collection(name).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return grid.Row{}, fmt.Errorf("mongo: %s/%s: %w", name, id, source.ErrNotFound)
	}
	if err != nil {
		return grid.Row{}, fmt.Errorf("mongo: find %s/%s: %w", name, id, err)
	}
	return toRow(doc), nil
}

// Close disconnects the client.
func (s *Source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Source) find(ctx context.Context, name string, limit int64) ([]bson.D, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	cursor, err := s.db.Collection(name).Find(ctx, bson.D{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: cursor: %w", err)
	}
	return docs, nil
}

func idCandidates(id string) bson.A {
	candidates := bson.A{id}
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		candidates = append(bson.A{oid}, candidates...)
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		candidates = append(candidates, n)
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			candidates = append(candidates, int32(n))
		}
	}
	return candidates
}

var _ source.Source = (*Source)(nil)
