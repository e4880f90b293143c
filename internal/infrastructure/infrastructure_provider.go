package infrastructure

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"promptforge/internal/application/generator"
	"promptforge/internal/config"
	"promptforge/internal/domain/file"
	"promptforge/internal/infrastructure/auth"
	"promptforge/internal/infrastructure/crontab"
	"promptforge/internal/infrastructure/database"
	"promptforge/internal/infrastructure/database/repository"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/infrastructure/inference"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/infrastructure/storage"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideLogger configures the process logger from LOG_LEVEL and LOG_FORMAT.
func ProvideLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

// ProvideJWTValidator returns nil when JWKS_URL is unset; bearer tokens are
// then rejected and only gateway identity headers are accepted.
func ProvideJWTValidator(cfg *config.Config, log zerolog.Logger) (*auth.JWTValidator, error) {
	if cfg.JWKSURL == "" {
		log.Warn().Msg("JWKS_URL is not set; bearer token auth disabled")
		return nil, nil
	}
	return auth.NewJWTValidator(
		context.Background(),
		cfg.JWKSURL,
		cfg.Issuer,
		cfg.Audience,
		cfg.RefreshJWKSInterval,
		cfg.AuthClockSkew,
		log,
	)
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(cfg.GetDatabaseWriteDSN(), cfg.DBPostgresqlRead1DSN, cfg.DBMaxIdleConns, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, err
	}

	// Run migrations if AUTO_MIGRATE is enabled
	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.AutoMigrate(db); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// ProvideTransactionDatabase provides a transaction database wrapper
func ProvideTransactionDatabase(db *gorm.DB) *transaction.Database {
	return transaction.NewDatabase(db)
}

// ProvideCrontab schedules job maintenance.
func ProvideCrontab(jobs *generator.JobService) *crontab.Crontab {
	return crontab.NewCrontab(jobs)
}

// Infrastructure holds all infrastructure dependencies
type Infrastructure struct {
	DB           *gorm.DB
	JWTValidator *auth.JWTValidator
	Storage      *storage.LocalStorage
	Logger       zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(
	db *gorm.DB,
	jwtValidator *auth.JWTValidator,
	localStorage *storage.LocalStorage,
	logger zerolog.Logger,
) *Infrastructure {
	return &Infrastructure{
		DB:           db,
		JWTValidator: jwtValidator,
		Storage:      localStorage,
		Logger:       logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,
	ProvideLogger,

	// Database
	ProvideDatabase,
	ProvideTransactionDatabase,
	wire.Bind(new(generator.Transactor), new(*transaction.Database)),

	// Repositories
	repository.RepositoryProvider,

	// Gemini
	inference.InferenceProvider,
	wire.Bind(new(generator.Transport), new(*inference.GeminiClient)),

	// Uploaded files
	storage.NewLocalStorage,
	wire.Bind(new(file.Storage), new(*storage.LocalStorage)),

	// Auth
	ProvideJWTValidator,

	// Crontab for job maintenance
	ProvideCrontab,

	// Infrastructure struct
	NewInfrastructure,
)
