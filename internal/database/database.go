// Package database provides the SQLite connection, migrations and transaction helpers
// behind the sqlite storage driver.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DriverSQLite is the database/sql driver name registered by go-sqlite3.
const DriverSQLite = "sqlite3"

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Connect establishes a database connection with the given configuration.
func Connect(cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// SQLiteConfig returns a Config for the SQLite database file at path, creating its parent
// directory. SQLite allows a single writer, so the pool is limited to one connection.
func SQLiteConfig(path string) (Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Config{}, fmt.Errorf("failed to create database directory: %w", err)
	}

	return Config{
		Driver:             DriverSQLite,
		ConnectionString:   SQLiteDSN(path),
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
		ConnMaxLifetime:    0,
	}, nil
}

// SQLiteDSN builds the go-sqlite3 connection string for path with WAL journaling,
// foreign keys and a busy timeout.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
}
