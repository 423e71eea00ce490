// Package sqldb browses the tables of a SQL database through
// database/sql. Postgres is reachable through pgx ("pgx") or lib/pq
// ("postgres"), plus MySQL ("mysql") and SQLite ("sqlite3").
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// Config holds the connection and pool settings.
type Config struct {
	// Driver is the database/sql driver name: pgx, postgres, mysql or sqlite3.
	Driver string
	// DSN is the driver-specific data source name.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// QueryTimeout bounds each query.
	QueryTimeout time.Duration
	// DefaultLimit is used when FetchRows is called with limit <= 0.
	DefaultLimit int
}

// DefaultConfig returns pool settings sized for an interactive tool.
func DefaultConfig() Config {
	return Config{
		Driver:          "pgx",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 10 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    30 * time.Second,
		DefaultLimit:    100,
	}
}

// Source reads tables as collections.
type Source struct {
	db      *sql.DB
	dialect dialect
	config  Config
	logger  *zap.Logger
}

// Open connects using config and verifies the connection.
func Open(ctx context.Context, config Config, logger *zap.Logger) (*Source, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("sqldb: dsn is required")
	}
	if _, err := dialectFor(config.Driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqldb: open %s: %w", config.Driver, err)
	}

	s, err := NewWithDB(db, config, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.configurePool(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sql.DB, config Config, logger *zap.Logger) (*Source, error) {
	d, err := dialectFor(config.Driver)
	if err != nil {
		return nil, err
	}
	def := DefaultConfig()
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = def.QueryTimeout
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = def.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{db: db, dialect: d, config: config, logger: logger}, nil
}

func (s *Source) configurePool(ctx context.Context) error {
	def := DefaultConfig()
	if s.config.MaxOpenConns <= 0 {
		s.config.MaxOpenConns = def.MaxOpenConns
	}
	if s.config.MaxIdleConns <= 0 {
		s.config.MaxIdleConns = def.MaxIdleConns
	}
	if s.config.ConnMaxLifetime <= 0 {
		s.config.ConnMaxLifetime = def.ConnMaxLifetime
	}
	if s.config.ConnMaxIdleTime <= 0 {
		s.config.ConnMaxIdleTime = def.ConnMaxIdleTime
	}
	s.db.SetMaxOpenConns(s.config.MaxOpenConns)
	s.db.SetMaxIdleConns(s.config.MaxIdleConns)
	s.db.SetConnMaxLifetime(s.config.ConnMaxLifetime)
	s.db.SetConnMaxIdleTime(s.config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqldb: ping: %w", err)
	}
	return nil
}

// ListCollections returns the base tables of the current schema.
func (s *Source) ListCollections(ctx context.Context) ([]source.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.dialect.listTables)
	if err != nil {
		return nil, fmt.Errorf("sqldb: list tables: %w", err)
	}
	defer rows.Close()

	out := []source.Collection{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqldb: scan table name: %w", err)
		}
		out = append(out, source.Collection{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: list tables: %w", err)
	}
	return out, nil
}

// FetchCollectionSchema returns the columns of table in ordinal order.
// An unknown table is source.ErrNotFound.
func (s *Source) FetchCollectionSchema(ctx context.Context, table string) ([]source.FieldDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	var (
		fields []source.FieldDescriptor
		err    error
	)
	if s.dialect.columns == "" {
		fields, err = s.pragmaColumns(ctx, table)
	} else {
		fields, err = s.infoSchemaColumns(ctx, table)
	}
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("sqldb: table %q: %w", table, source.ErrNotFound)
	}
	return fields, nil
}

func (s *Source) infoSchemaColumns(ctx context.Context, table string) ([]source.FieldDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.columns, table)
	if err != nil {
		return nil, fmt.Errorf("sqldb: describe %s: %w", table, err)
	}
	defer rows.Close()

	var fields []source.FieldDescriptor
	for rows.Next() {
		var (
			name, dbType   string
			nullable, isPK bool
		)
		if err := rows.Scan(&name, &dbType, &nullable, &isPK); err != nil {
			return nil, fmt.Errorf("sqldb: scan column: %w", err)
		}
		fields = append(fields, source.FieldDescriptor{
			Field:      name,
			Type:       fieldType(dbType),
			Nullable:   nullable,
			PrimaryKey: isPK,
		})
	}
	return fields, rows.Err()
}

func (s *Source) pragmaColumns(ctx context.Context, table string) ([]source.FieldDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.pragmaTableInfo(table))
	if err != nil {
		return nil, fmt.Errorf("sqldb: describe %s: %w", table, err)
	}
	defer rows.Close()

	var fields []source.FieldDescriptor
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqldb: scan column: %w", err)
		}
		fields = append(fields, source.FieldDescriptor{
			Field:      name,
			Type:       fieldType(colType),
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
		})
	}
	return fields, rows.Err()
}

// FetchRows returns up to limit rows of table in storage order.
func (s *Source) FetchRows(ctx context.Context, table string, limit int) ([]grid.Row, error) {
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	schema, err := s.FetchCollectionSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, s.dialect.selectRows(table), limit)
	if err != nil {
		return nil, fmt.Errorf("sqldb: select %s: %w", table, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, typesByName(schema))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sql rows fetched",
		zap.String("table", table),
		zap.Int("rows", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// FetchRow returns the row of table whose primary key equals id. Tables
// without a declared key fall back to SQLite's rowid or an "id" column.
func (s *Source) FetchRow(ctx context.Context, table, id string) (grid.Row, error) {
	schema, err := s.FetchCollectionSchema(ctx, table)
	if err != nil {
		return grid.Row{}, err
	}
	key := primaryKey(schema, s.dialect)

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.dialect.selectRow(table, key), id)
	if err != nil {
		return grid.Row{}, fmt.Errorf("sqldb: select %s: %w", table, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, typesByName(schema))
	if err != nil {
		return grid.Row{}, err
	}
	if len(out) == 0 {
		return grid.Row{}, fmt.Errorf("sqldb: %s/%s: %w", table, id, source.ErrNotFound)
	}
	return out[0], nil
}

// Close closes the connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}

func primaryKey(schema []source.FieldDescriptor, d dialect) string {
	for _, f := range schema {
		if f.PrimaryKey {
			return f.Field
		}
	}
	if d.name == sqliteDialect.name {
		return "rowid"
	}
	return "id"
}

func typesByName(schema []source.FieldDescriptor) map[string]string {
	m := make(map[string]string, len(schema))
	for _, f := range schema {
		m[f.Field] = f.Type
	}
	return m
}

// scanRows reads every row into a grid.Row keyed by column name.
func scanRows(rows *sql.Rows, types map[string]string) ([]grid.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqldb: columns: %w", err)
	}
	out := []grid.Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqldb: scan row: %w", err)
		}

		fields := make([]grid.Field, len(cols))
		for i, name := range cols {
			fields[i] = grid.F(name, normalize(values[i], types[name]))
		}
		out = append(out, grid.NewRow(fields...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterate: %w", err)
	}
	return out, nil
}

// normalize turns driver values into plain display values: text bytes
// become strings, binary bytes become a size placeholder, times become
// RFC 3339 strings and integer booleans become bools.
func normalize(v any, fieldType string) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		if fieldType == "binary" {
			return fmt.Sprintf("[binary %d bytes]", len(val))
		}
		s := string(val)
		if fieldType == "boolean" {
			switch strings.ToLower(s) {
			case "1", "t", "true":
				return true
			case "0", "f", "false":
				return false
			}
		}
		return s
	case time.Time:
		return val.Format(time.RFC3339)
	case int64:
		if fieldType == "boolean" {
			return val != 0
		}
		return val
	case float64, float32:
		// Postgres double precision admits NaN and ±Infinity.
		return grid.JSONSafe(val)
	}
	return v
}

// IsNoRows reports whether err is sql.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ source.Source = (*Source)(nil)
