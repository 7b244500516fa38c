// Package store keeps the invocation history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/footprint-tools/comfort/internal/store/migrations"
)

// Invocation is one recorded dispatch.
type Invocation struct {
	ID           int64
	InvocationID string
	Name         string
	Command      string
	Args         []string
	ErrorCode    string
	Error        string
	ExitCode     int
	Elapsed      time.Duration
	CreatedAt    time.Time
}

// Filter narrows List results. Zero fields are ignored.
type Filter struct {
	Command string
	Failed  bool
	Since   time.Time
	Limit   int
}

// Store wraps a SQLite database connection holding the history.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: the history is written by a single process, and
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	setDBPermissions(path)

	if err = migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// NewWithDB wraps an open, migrated database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func setDBPermissions(path string) {
	if path == ":memory:" {
		return
	}
	_ = os.Chmod(path, 0600)
	_ = os.Chmod(path+"-wal", 0600)
	_ = os.Chmod(path+"-shm", 0600)
}

// Insert records an invocation. Recording the same invocation ID twice keeps
// the latest outcome.
func (s *Store) Insert(ctx context.Context, inv Invocation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations
		 (invocation_id, name, command, args, error_code, error, exit_code, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(invocation_id)
		 DO UPDATE SET error_code = excluded.error_code,
		               error = excluded.error,
		               exit_code = excluded.exit_code,
		               elapsed_ms = excluded.elapsed_ms`,
		inv.InvocationID,
		inv.Name,
		inv.Command,
		strings.Join(inv.Args, "\x1f"),
		inv.ErrorCode,
		inv.Error,
		inv.ExitCode,
		inv.Elapsed.Milliseconds(),
		inv.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// List returns recorded invocations, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Invocation, error) {
	query := `
		SELECT id, invocation_id, name, command, args, error_code, error, exit_code, elapsed_ms, created_at
		FROM invocations
	`

	var (
		clauses []string
		args    []any
	)

	if filter.Command != "" {
		clauses = append(clauses, "command = ?")
		args = append(args, filter.Command)
	}
	if filter.Failed {
		clauses = append(clauses, "exit_code != 0")
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		var (
			inv       Invocation
			rawArgs   string
			elapsed   int64
			createdAt string
		)
		if err := rows.Scan(&inv.ID, &inv.InvocationID, &inv.Name, &inv.Command, &rawArgs,
			&inv.ErrorCode, &inv.Error, &inv.ExitCode, &elapsed, &createdAt); err != nil {
			return nil, err
		}
		if rawArgs != "" {
			inv.Args = strings.Split(rawArgs, "\x1f")
		}
		inv.Elapsed = time.Duration(elapsed) * time.Millisecond
		inv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, inv)
	}
	return out, rows.Err()
}
