package sqldb

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect holds the per-driver SQL differences.
type dialect struct {
	name string
	// quoteChar wraps identifiers.
	quoteChar byte
	// numbered placeholders ($1) instead of ?.
	numbered   bool
	listTables string
	// columns lists name, data type, nullable and primary-key flag for one
	// table, taking the table name as its only argument. Empty means the
	// dialect uses PRAGMA table_info.
	columns string
}

var (
	postgresDialect = dialect{
		name:      "postgres",
		quoteChar: '"',
		numbered:  true,
		listTables: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
			ORDER BY table_name`,
		columns: `SELECT c.column_name, c.data_type, c.is_nullable = 'YES',
			EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage k
				  ON tc.constraint_name = k.constraint_name AND tc.table_schema = k.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				  AND tc.table_schema = c.table_schema
				  AND tc.table_name = c.table_name
				  AND k.column_name = c.column_name
			)
			FROM information_schema.columns c
			WHERE c.table_schema = current_schema() AND c.table_name = $1
			ORDER BY c.ordinal_position`,
	}

	mysqlDialect = dialect{
		name:      "mysql",
		quoteChar: '`',
		listTables: `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_NAME`,
		columns: `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE = 'YES', COLUMN_KEY = 'PRI'
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`,
	}

	sqliteDialect = dialect{
		name:      "sqlite",
		quoteChar: '"',
		listTables: `SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name`,
	}
)

// dialectFor maps a database/sql driver name to its dialect.
func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return postgresDialect, nil
	case "mysql":
		return mysqlDialect, nil
	case "sqlite3", "sqlite":
		return sqliteDialect, nil
	}
	return dialect{}, fmt.Errorf("sqldb: unsupported driver %q", driver)
}

// quote wraps an identifier, doubling any embedded quote character.
func (d dialect) quote(ident string) string {
	q := string(d.quoteChar)
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// placeholder returns the n-th (1-based) bind parameter.
func (d dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d dialect) selectRows(table string) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %s", d.quote(table), d.placeholder(1))
}

func (d dialect) selectRow(table, key string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = %s LIMIT 1",
		d.quote(table), d.quote(key), d.placeholder(1))
}

func (d dialect) pragmaTableInfo(table string) string {
	return "PRAGMA table_info(" + d.quote(table) + ")"
}

// fieldType maps a database type name onto the field type vocabulary of
// source.FieldDescriptor.
func fieldType(dbType string) string {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch {
	case t == "":
		return ""
	case strings.Contains(t, "bool"):
		return "boolean"
	case t == "bigint" || t == "int8" || t == "bigserial":
		return "bigInteger"
	case t == "int" || t == "integer" || t == "int2" || t == "int4" || t == "smallint" ||
		t == "mediumint" || t == "tinyint" || t == "serial" || t == "smallserial" || t == "unsigned big int":
		return "integer"
	case strings.Contains(t, "double") || t == "real" || strings.HasPrefix(t, "float"):
		return "float"
	case t == "numeric" || t == "decimal" || t == "money":
		return "decimal"
	case strings.HasPrefix(t, "timestamp"):
		return "timestamp"
	case t == "datetime":
		return "dateTime"
	case t == "date":
		return "date"
	case strings.HasPrefix(t, "time"):
		return "time"
	case strings.HasPrefix(t, "json"):
		return "json"
	case t == "uuid":
		return "uuid"
	case strings.Contains(t, "text") || strings.Contains(t, "clob"):
		return "text"
	case strings.Contains(t, "char") || t == "enum" || t == "set" || t == "string":
		return "string"
	case isBinaryType(t):
		return "binary"
	}
	return ""
}

func isBinaryType(t string) bool {
	t = strings.ToLower(t)
	return strings.Contains(t, "blob") || t == "bytea" || strings.Contains(t, "binary")
}
