package store

import "fmt"

// dialect abstracts the SQL differences between the supported backends.
// Booleans are stored as integers in both so scans stay uniform.
type dialect interface {
	driverName() string
	placeholder(n int) string
	boolToStorage(b bool) int64
	supportsReturning() bool
	ensureStatement(table string) string
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) boolToStorage(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (sqliteDialect) supportsReturning() bool { return false }

func (sqliteDialect) ensureStatement(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		stopped INTEGER NOT NULL DEFAULT 0,
		report TEXT
	)`, table)
}

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) boolToStorage(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (postgresDialect) supportsReturning() bool { return true }

func (postgresDialect) ensureStatement(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		mode TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		stopped SMALLINT NOT NULL DEFAULT 0,
		report TEXT
	)`, table)
}
