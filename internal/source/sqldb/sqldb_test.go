package sqldb

import (
	"context"
	"database/sql"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/explorer/internal/source"
)

func setupTestDB(t *testing.T, driver string) (*Source, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewWithDB(db, Config{Driver: driver}, nil)
	require.NoError(t, err)
	return s, mock
}

func expectPostgresSchema(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM information_schema.columns c`).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "nullable", "pk"}).
			AddRow("id", "integer", false, true).
			AddRow("name", "character varying", true, false).
			AddRow("active", "boolean", false, false).
			AddRow("avatar", "bytea", true, false).
			AddRow("created_at", "timestamp with time zone", false, false))
}

func TestNewWithDB_UnsupportedDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewWithDB(db, Config{Driver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "pgx"}, nil)
	assert.Error(t, err)
}

func TestListCollections(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("posts").AddRow("users"))

	cols, err := s.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []source.Collection{{Name: "posts"}, {Name: "users"}}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchCollectionSchema_Postgres(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")
	expectPostgresSchema(mock)

	fields, err := s.FetchCollectionSchema(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, fields, 5)

	assert.Equal(t, source.FieldDescriptor{Field: "id", Type: "integer", PrimaryKey: true}, fields[0])
	assert.Equal(t, "string", fields[1].Type)
	assert.True(t, fields[1].Nullable)
	assert.Equal(t, "boolean", fields[2].Type)
	assert.Equal(t, "binary", fields[3].Type)
	assert.Equal(t, "timestamp", fields[4].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchCollectionSchema_UnknownTable(t *testing.T) {
	s, mock := setupTestDB(t, "mysql")

	mock.ExpectQuery(`FROM INFORMATION_SCHEMA.COLUMNS`).
		WithArgs("ghosts").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "nullable", "pk"}))

	_, err := s.FetchCollectionSchema(context.Background(), "ghosts")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestFetchCollectionSchema_SQLitePragma(t *testing.T) {
	s, mock := setupTestDB(t, "sqlite3")

	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("notes")`)).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 1, nil, 1).
			AddRow(1, "body", "TEXT", 0, nil, 0))

	fields, err := s.FetchCollectionSchema(context.Background(), "notes")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.True(t, fields[0].PrimaryKey)
	assert.False(t, fields[0].Nullable)
	assert.Equal(t, "text", fields[1].Type)
	assert.True(t, fields[1].Nullable)
}

func TestFetchRows(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")
	expectPostgresSchema(mock)

	created := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active", "avatar", "created_at"}).
			AddRow(int64(1), []byte("Ann"), true, []byte{0x89, 0x50, 0x4e}, created).
			AddRow(int64(2), nil, false, nil, created))

	rows, err := s.FetchRows(context.Background(), "users", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"id", "name", "active", "avatar", "created_at"}, rows[0].Keys())

	name, _ := rows[0].Get("name")
	assert.Equal(t, "Ann", name)
	avatar, _ := rows[0].Get("avatar")
	assert.Equal(t, "[binary 3 bytes]", avatar)
	at, _ := rows[0].Get("created_at")
	assert.Equal(t, "2024-03-01T15:30:00Z", at)

	missing, ok := rows[1].Get("name")
	assert.True(t, ok)
	assert.Nil(t, missing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRows_DefaultLimit(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")
	expectPostgresSchema(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" LIMIT $1`)).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := s.FetchRows(context.Background(), "users", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRow(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")
	expectPostgresSchema(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "id" = $1 LIMIT 1`)).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Ann"))

	row, err := s.FetchRow(context.Background(), "users", "1")
	require.NoError(t, err)
	id, _ := row.Get("id")
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRow_NotFound(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")
	expectPostgresSchema(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "id" = $1 LIMIT 1`)).
		WithArgs("99").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := s.FetchRow(context.Background(), "users", "99")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestFetchRow_SQLiteRowID(t *testing.T) {
	s, mock := setupTestDB(t, "sqlite3")

	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("logs")`)).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "line", "TEXT", 0, nil, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "logs" WHERE "rowid" = ? LIMIT 1`)).
		WithArgs("3").
		WillReturnRows(sqlmock.NewRows([]string{"line"}).AddRow("boot"))

	row, err := s.FetchRow(context.Background(), "logs", "3")
	require.NoError(t, err)
	line, _ := row.Get("line")
	assert.Equal(t, "boot", line)
}

func TestFetchRows_QueryError(t *testing.T) {
	s, mock := setupTestDB(t, "pgx")
	expectPostgresSchema(mock)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(sql.ErrConnDone)

	_, err := s.FetchRows(context.Background(), "users", 5)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		fieldType string
		want      any
	}{
		{"nil", nil, "string", nil},
		{"text bytes", []byte("hi"), "string", "hi"},
		{"binary bytes", []byte{1, 2}, "binary", "[binary 2 bytes]"},
		{"mysql tinyint bool", int64(1), "boolean", true},
		{"plain int", int64(7), "integer", int64(7)},
		{"bool bytes", []byte("f"), "boolean", false},
		{"float", 1.5, "float", 1.5},
		{"nan", math.NaN(), "float", "NaN"},
		{"negative infinity", float32(math.Inf(-1)), "float", "-Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.value, tt.fieldType))
		})
	}
}

func TestFieldType(t *testing.T) {
	tests := map[string]string{
		"INTEGER":                     "integer",
		"bigint":                      "bigInteger",
		"varchar(255)":                "string",
		"interval":                    "",
		"numeric(10,2)":               "decimal",
		"double precision":            "float",
		"timestamp without time zone": "timestamp",
		"datetime":                    "dateTime",
		"jsonb":                       "json",
		"tinyint(1)":                  "integer",
		"BLOB":                        "binary",
		"longtext":                    "text",
	}
	for in, want := range tests {
		if got := fieldType(in); got != want {
			t.Errorf("fieldType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDialectQuote(t *testing.T) {
	assert.Equal(t, `"we""ird"`, postgresDialect.quote(`we"ird`))
	assert.Equal(t, "`a``b`", mysqlDialect.quote("a`b"))
	assert.Equal(t, "SELECT * FROM `t` LIMIT ?", mysqlDialect.selectRows("t"))
}
