// Package store persists migration run history. Two backends are supported,
// sqlite (default, file or in-memory) and postgresql, selected through a
// driver config map so the YAML config can carry backend-specific settings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/nokel/shopify-migration-tool/internal/common"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"

	runsTable = "migration_runs"
)

// RunRecord is one migration run's outcome as persisted.
type RunRecord struct {
	ID        int64
	Mode      string
	StartedAt time.Time
	EndedAt   time.Time
	Stopped   bool
	Report    string
}

// Store is the run-history contract consumed by the engine and the CLI.
type Store interface {
	RecordRun(ctx context.Context, rec RunRecord) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}

// Config selects and configures a backend. DriverConfig carries
// backend-specific keys (sqlite: path; postgresql: dsn or host/port/...).
type Config struct {
	Driver       string         `mapstructure:"driver"`
	DriverConfig map[string]any `mapstructure:"config"`
}

// Open connects to the configured backend and ensures the schema.
func (c *Config) Open() (Store, error) {
	driver := c.Driver
	if driver == "" {
		driver = DriverSqlite
	}

	var dialect dialect
	var dsn string

	switch driver {
	case DriverSqlite:
		var sc sqliteConfig
		if err := decodeDriverConfig(c.DriverConfig, &sc); err != nil {
			return nil, err
		}
		dialect = sqliteDialect{}
		dsn = sc.DSN()
	case DriverPostgresql:
		var pc postgresConfig
		if err := decodeDriverConfig(c.DriverConfig, &pc); err != nil {
			return nil, err
		}
		dialect = postgresDialect{}
		dsn = pc.DSN()
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s store: %w", driver, err)
	}

	s := &sqlStore{
		db:      db,
		dialect: dialect,
		logger:  common.GetLogger().WithStore(driver),
	}
	if err := s.ensure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info("run history store ready")
	return s, nil
}

func decodeDriverConfig(raw map[string]any, out any) error {
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: out})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode store driver config: %w", err)
	}
	return nil
}

// sqlStore implements Store on database/sql; dialect covers the driver
// differences (placeholders, bool storage, schema DDL).
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *common.Logger
}

func (s *sqlStore) ensure() error {
	if _, err := s.db.Exec(s.dialect.ensureStatement(runsTable)); err != nil {
		return fmt.Errorf("ensure run history schema: %w", err)
	}
	return nil
}

func (s *sqlStore) RecordRun(ctx context.Context, rec RunRecord) (int64, error) {
	q := fmt.Sprintf(
		"INSERT INTO %s(mode, started_at, ended_at, stopped, report) VALUES(%s,%s,%s,%s,%s)",
		runsTable,
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3),
		s.dialect.placeholder(4), s.dialect.placeholder(5))

	args := []any{
		rec.Mode,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.EndedAt.UTC().Format(time.RFC3339),
		s.dialect.boolToStorage(rec.Stopped),
		rec.Report,
	}

	if s.dialect.supportsReturning() {
		var id int64
		err := s.db.QueryRowContext(ctx, q+" RETURNING id", args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("record run: %w", err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run id: %w", err)
	}
	return id, nil
}

func (s *sqlStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := fmt.Sprintf("SELECT id, mode, started_at, ended_at, stopped, report FROM %s ORDER BY id DESC", runsTable)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, ended string
		var stopped int64
		var report sql.NullString

		if err := rows.Scan(&rec.ID, &rec.Mode, &started, &ended, &stopped, &report); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, started)
		rec.EndedAt, _ = time.Parse(time.RFC3339, ended)
		rec.Stopped = stopped != 0
		rec.Report = report.String
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
