package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// migration is one additive schema step. Migrations never drop or clear a
// collection; existing data survives every version bump. The only
// destructive-replace path in the system is backup import.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS students (
				id TEXT PRIMARY KEY,
				full_name TEXT NOT NULL,
				father_name TEXT NOT NULL DEFAULT '',
				gender TEXT NOT NULL DEFAULT 'Other',
				class TEXT NOT NULL DEFAULT '',
				semester TEXT NOT NULL DEFAULT '',
				roll_number TEXT NOT NULL,
				registration_number TEXT NOT NULL DEFAULT '',
				subjects TEXT NOT NULL DEFAULT '[]',
				phone TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL,
				address TEXT NOT NULL DEFAULT '',
				profile_photo TEXT NOT NULL DEFAULT '',
				fee_status TEXT NOT NULL DEFAULT 'Pending',
				fee_paid REAL NOT NULL DEFAULT 0,
				fee_total REAL NOT NULL DEFAULT 0,
				attendance REAL NOT NULL DEFAULT 0,
				admission_date TEXT NOT NULL DEFAULT '',
				comments TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				synced BOOLEAN NOT NULL DEFAULT TRUE
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_students_roll ON students (roll_number)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_students_email ON students (email)`,
			`CREATE INDEX IF NOT EXISTS idx_students_class ON students (class)`,
			`CREATE INDEX IF NOT EXISTS idx_students_name ON students (full_name)`,
			`CREATE TABLE IF NOT EXISTS admins (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_email ON admins (email)`,
			`CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				student_id TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_student ON notifications (student_id)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS sync_queue (
				id TEXT PRIMARY KEY,
				op TEXT NOT NULL,
				collection TEXT NOT NULL,
				payload TEXT NOT NULL,
				enqueued_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sync_queue_enqueued ON sync_queue (enqueued_at)`,
		},
	},
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.Get(&current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("apply migration %d: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(s.db.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`), m.version, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		s.logger.Info("schema migration applied", zap.Int("version", m.version))
	}

	return nil
}
