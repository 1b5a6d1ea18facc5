// Package sqlite is the embedded store for single-node installs. It carries
// the same contracts as the PostgreSQL repositories.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// DB wraps the sql handle shared by all sqlite repositories.
type DB struct {
	*sql.DB
}

// Open opens (and migrates) the database at path. ":memory:" gives a private
// in-memory database pinned to one connection.
func Open(path string) (*DB, error) {
	dsn := path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	memory := path == ":memory:"
	if memory {
		dsn = "file::memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	store := &DB{DB: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (db *DB) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		manager_id TEXT REFERENCES employees (id) ON DELETE SET NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		employee_code TEXT NOT NULL DEFAULT '',
		national_id TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL,
		job_title TEXT NOT NULL DEFAULT '',
		nationality TEXT NOT NULL DEFAULT '',
		contract_type TEXT NOT NULL DEFAULT '',
		basic_salary TEXT,
		attendance_bonus TEXT NOT NULL DEFAULT '0',
		exclude_leave_from_deduction BOOLEAN NOT NULL DEFAULT 1,
		exclude_sick_from_deduction BOOLEAN NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'inactive', 'on_leave', 'terminated')),
		phone_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS employee_departments (
		employee_id TEXT NOT NULL REFERENCES employees (id) ON DELETE CASCADE,
		department_id TEXT NOT NULL REFERENCES departments (id),
		PRIMARY KEY (employee_id, department_id)
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees (id) ON DELETE CASCADE,
		date DATE NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('present', 'absent', 'leave', 'sick')),
		UNIQUE (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS salary_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees (id),
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		year INTEGER NOT NULL,
		basic_salary TEXT NOT NULL DEFAULT '0',
		attendance_bonus TEXT NOT NULL DEFAULT '0',
		allowances TEXT NOT NULL DEFAULT '0',
		bonus TEXT NOT NULL DEFAULT '0',
		deductions TEXT NOT NULL DEFAULT '0',
		other_deductions TEXT NOT NULL DEFAULT '0',
		net_salary TEXT NOT NULL DEFAULT '0',
		present_days INTEGER NOT NULL DEFAULT 0,
		absent_days INTEGER NOT NULL DEFAULT 0,
		leave_days INTEGER NOT NULL DEFAULT 0,
		sick_days INTEGER NOT NULL DEFAULT 0,
		attendance_deduction TEXT NOT NULL DEFAULT '0',
		attendance_calculated BOOLEAN NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (employee_id, month, year)
	);

	CREATE INDEX IF NOT EXISTS idx_salary_records_period
		ON salary_records (year, month);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		details TEXT,
		user_id TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_entity
		ON audit_log (entity_type, created_at DESC);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
