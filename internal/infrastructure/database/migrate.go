package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	iofs "github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"promptforge/internal/infrastructure/logger"
	"promptforge/migrations"
)

// AutoMigrate applies all pending SQL migrations bundled with the service.
func AutoMigrate(gormDB *gorm.DB) error {
	log := logger.GetLogger()
	return withMigrator(gormDB, func(migrator *migrate.Migrate) error {
		version, dirty, err := migrator.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Warn().Err(err).Msg("Error getting migration version")
		} else if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("No migrations have been applied yet")
		} else {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration state")
		}

		// A dirty version means a previous run died mid-migration; force it so Up can retry.
		if dirty {
			log.Warn().Uint("version", version).Msg("Database is in dirty state, forcing version...")
			if forceErr := migrator.Force(int(version)); forceErr != nil {
				return fmt.Errorf("force version %d to clear dirty state: %w", version, forceErr)
			}
		}

		if err := migrator.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info().Msg("No new migrations to apply")
				return nil
			}
			log.Error().Err(err).Msg("Failed to apply migrations")
			return fmt.Errorf("apply migrations: %w", err)
		}

		if finalVersion, _, err := migrator.Version(); err == nil {
			log.Info().Uint("version", finalVersion).Msg("Migrations applied successfully")
		}
		return nil
	})
}

// Rollback reverts the given number of migrations.
func Rollback(gormDB *gorm.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	return withMigrator(gormDB, func(migrator *migrate.Migrate) error {
		if err := migrator.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rollback migrations: %w", err)
		}
		return nil
	})
}

// MigrationVersion reports the applied version. Zero means nothing was applied.
func MigrationVersion(gormDB *gorm.DB) (version uint, dirty bool, err error) {
	err = withMigrator(gormDB, func(migrator *migrate.Migrate) error {
		v, d, verr := migrator.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		version, dirty = v, d
		return verr
	})
	return version, dirty, err
}

func withMigrator(gormDB *gorm.DB, fn func(*migrate.Migrate) error) (err error) {
	log := logger.GetLogger()

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migration directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			log.Debug().Str("file", entry.Name()).Msg("Found migration file")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("retrieve sql db: %w", err)
	}

	if err := gormDB.Exec("CREATE SCHEMA IF NOT EXISTS " + SchemaName).Error; err != nil {
		log.Warn().Err(err).Str("schema", SchemaName).Msg("Failed to create schema, may already exist")
	}

	conn, err := sqlDB.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("acquire dedicated connection: %w", err)
	}

	driver, err := postgres.WithConnection(context.Background(), conn, &postgres.Config{
		MigrationsTable: "schema_migrations",
		SchemaName:      SchemaName,
	})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("initialize postgres driver: %w", err)
	}
	defer func() {
		if closeErr := driver.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration connection: %w", closeErr)
		}
	}()

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer func() {
		if closeErr := source.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration source: %w", closeErr)
		}
	}()

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return fn(migrator)
}

// ForceVersion marks version as applied and clean without running it.
func ForceVersion(gormDB *gorm.DB, version int) error {
	return withMigrator(gormDB, func(migrator *migrate.Migrate) error {
		if err := migrator.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		return nil
	})
}
