// Package testutil provides testing utilities for database-backed tests.
//
// Database Setup:
//
//	db := testutil.SetupSQLiteDB(t)
//	defer testutil.TeardownDB(t, db)
//
// Each call creates a fresh SQLite file in t.TempDir() and applies the embedded
// migrations, so tests never share state.
//
// Environment Variables:
//   - TEST_SQLITE_DIR: directory for test databases instead of t.TempDir()
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/allisson/vault/internal/database"
)

// GetSQLiteTestDir returns the directory for test databases, checking the environment first.
func GetSQLiteTestDir(t *testing.T) string {
	t.Helper()
	if dir := os.Getenv("TEST_SQLITE_DIR"); dir != "" {
		return dir
	}
	return t.TempDir()
}

// SQLiteTestPath returns a database file path unique to the running test.
func SQLiteTestPath(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return filepath.Join(GetSQLiteTestDir(t), fmt.Sprintf("%s.db", name))
}

// SetupSQLiteDB opens a migrated SQLite database for the test.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	path := SQLiteTestPath(t)
	_ = os.Remove(path)

	cfg, err := database.SQLiteConfig(path)
	require.NoError(t, err, "failed to build sqlite config")

	db, err := database.Connect(cfg)
	require.NoError(t, err, "failed to connect to sqlite")

	m, err := database.NewSQLiteMigrate(db)
	require.NoError(t, err, "failed to create migrate instance")
	require.NoError(t, database.MigrateUp(m), "failed to run migrations")

	return db
}

// TeardownDB closes the database connection.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db != nil {
		err := db.Close()
		require.NoError(t, err, "failed to close database connection")
	}
}

// CleanupSQLiteDB removes all rows while keeping the schema.
func CleanupSQLiteDB(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"secrets", "kdf_params"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "failed to clean table %s", table)
	}
}
