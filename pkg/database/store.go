package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/pkg/config"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the handle to the record store. It is constructed explicitly and
// injected into repositories; there is no process-wide singleton.
type Store struct {
	db     *sqlx.DB
	driver string
	logger *zap.Logger
}

// Open connects to the configured store, verifies the connection and applies
// any pending schema migrations. Failures surface as STORAGE_UNAVAILABLE so
// callers never proceed against an unopened store.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driverName, dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "unsupported store configuration")
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "open store")
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.Driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY under concurrent portal traffic.
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "store unreachable")
	}

	store := &Store{db: db, driver: cfg.Driver, logger: logger}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "migrate store")
	}

	return store, nil
}

// DB exposes the underlying handle for repositories.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Driver reports the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func resolveDSN(cfg config.DatabaseConfig) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = "student-management.db"
		}
		return "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_loc=UTC", path), nil
	case DriverPostgres:
		return "postgres", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode), nil
	default:
		return "", "", fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

// IsUniqueViolation reports whether err is a unique-index violation from
// either supported driver. Repositories translate these to DUPLICATE_KEY.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
