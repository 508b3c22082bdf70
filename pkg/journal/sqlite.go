package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend using SQLite for persistence.
// It is suitable for single-instance deployments where the usage journal
// should survive restarts (the journal is an audit trail only; limiter
// state itself is never persisted).
//
// The database runs in WAL mode with a single writer connection.
type SQLiteBackend struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once
	closeErr  error

	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a new SQLite journal backend.
func NewSQLiteBackend(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{
		db:     db,
		dbPath: cfg.Path,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

// initSchema creates the journal table if it doesn't exist.
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_journal (
		id TEXT PRIMARY KEY,
		client TEXT NOT NULL,
		host TEXT NOT NULL,
		wait_ns INTEGER NOT NULL,
		cooldown_ns INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_usage_journal_created_at
		ON usage_journal(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_usage_journal_host
		ON usage_journal(host);
	`
	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the SQL statements used on the hot path.
func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO usage_journal (id, client, host, wait_ns, cooldown_ns, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, client, host, wait_ns, cooldown_ns, outcome, created_at
		FROM usage_journal
		ORDER BY created_at DESC, id
		LIMIT ?`)
	if err != nil {
		return fmt.Errorf("prepare recent: %w", err)
	}

	return nil
}

// Append stores a record.
func (s *SQLiteBackend) Append(ctx context.Context, rec *Record) error {
	_, err := s.insertStmt.ExecContext(ctx,
		rec.ID,
		rec.Client,
		rec.Host,
		rec.Wait.Nanoseconds(),
		rec.Cooldown.Nanoseconds(),
		rec.Outcome,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert journal record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteBackend) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var waitNS, cooldownNS, createdNS int64
		if err := rows.Scan(&rec.ID, &rec.Client, &rec.Host, &waitNS, &cooldownNS, &rec.Outcome, &createdNS); err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		rec.Wait = time.Duration(waitNS)
		rec.Cooldown = time.Duration(cooldownNS)
		rec.CreatedAt = time.Unix(0, createdNS).UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Close closes prepared statements and the database.
func (s *SQLiteBackend) Close() error {
	s.closeOnce.Do(func() {
		if s.insertStmt != nil {
			s.insertStmt.Close()
		}
		if s.recentStmt != nil {
			s.recentStmt.Close()
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
