package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"promptforge/internal/config"
	"promptforge/internal/infrastructure/database"
	"promptforge/internal/infrastructure/storage"
	"promptforge/internal/utils/platformerrors"
)

// DataInitializer checks that the persistent state the server depends on is
// usable before any request is served.
type DataInitializer struct {
	db      *gorm.DB
	storage *storage.LocalStorage
	config  *config.Config
	log     zerolog.Logger
}

func (d *DataInitializer) Install(ctx context.Context) error {
	version, dirty, err := database.MigrationVersion(d.db)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to read migration version")
	}
	if dirty {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal,
			fmt.Sprintf("migration version %d is dirty; run promptctl migrate force", version), nil, "")
	}
	if version == 0 && !d.config.AutoMigrate {
		d.log.Warn().Msg("no migrations applied and AUTO_MIGRATE is off; run promptctl migrate up")
	}

	if err := d.storage.Health(ctx); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "upload directory is not writable")
	}

	if d.config.GeminiAPIKey == "" {
		d.log.Warn().Msg("GEMINI_API_KEY is not set; generation requests will fail")
	}

	d.log.Info().
		Uint("migration_version", version).
		Str("upload_dir", d.config.UploadDir).
		Msg("data initialization complete")
	return nil
}
