package database

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"

	"promptforge/internal/infrastructure/logger"
)

const (
	SchemaName  = "promptforge"
	TablePrefix = SchemaName + "."
)

// SchemaRegistry lists every table model; cmd/gormgen generates query code from it.
var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

// Config holds database configuration
type Config struct {
	WriteDSN    string
	ReadDSN     string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect opens the primary connection and, when a read DSN is set, routes
// plain reads to it through dbresolver. Reads inside a transaction stay on
// the primary.
func Connect(cfg Config) (*gorm.DB, error) {
	log := logger.GetLogger()

	db, err := gorm.Open(postgres.Open(cfg.WriteDSN), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   TablePrefix,
			SingularTable: false,
		},
		Logger: gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log.Error().
			Str("error_code", "5c16fb53-d98c-4fc6-8bb4-9abd3c0b9e88").
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	if cfg.ReadDSN != "" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.ReadDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(cfg.MaxIdle).
			SetMaxOpenConns(cfg.MaxOpen).
			SetConnMaxLifetime(cfg.MaxLifetime)
		if err := db.Use(resolver); err != nil {
			log.Error().
				Str("error_code", "0d9c2a71-4e3b-4f58-a6d2-91b8e7c4f305").
				Err(err).
				Msg("unable to register read replica")
			return nil, err
		}
		log.Info().Msg("read replica registered")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info().Msg("Successfully connected to database")
	return db, nil
}

// NewDB connects with the pool settings used by the server.
func NewDB(writeDSN, readDSN string, maxIdle, maxOpen int) (*gorm.DB, error) {
	return Connect(Config{
		WriteDSN:    writeDSN,
		ReadDSN:     readDSN,
		MaxIdle:     maxIdle,
		MaxOpen:     maxOpen,
		MaxLifetime: 1 * time.Hour,
		LogLevel:    gormlogger.Silent,
	})
}
