package commands

import (
	"log/slog"

	"github.com/allisson/vault/internal/app"
	"github.com/allisson/vault/internal/config"
)

// RunMigrations brings the storage schema up to date. Only the sqlite driver has a schema;
// for the file driver it is a no-op. Opening the database through the container applies
// every pending embedded migration.
func RunMigrations(container *app.Container) error {
	cfg := container.Config()
	logger := container.Logger()

	if cfg.StorageDriver != config.StorageDriverSQLite {
		logger.Info("storage driver has no schema, nothing to migrate",
			slog.String("driver", cfg.StorageDriver),
		)
		return nil
	}

	logger.Info("running database migrations",
		slog.String("driver", cfg.StorageDriver),
		slog.String("path", cfg.SQLitePath),
	)

	if _, err := container.DB(); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
