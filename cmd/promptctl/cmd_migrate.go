package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"promptforge/internal/config"
	"promptforge/internal/infrastructure/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withDB(func(db *gorm.DB) error {
				if err := database.Rollback(db, steps); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to revert")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				return printVersion(cmd, db)
			})
		},
	}

	forceCmd := &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withDB(func(db *gorm.DB) error {
				if err := database.ForceVersion(db, version); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
	return migrateCmd
}

func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dsn := cfg.GetDatabaseWriteDSN()
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL or DB_POSTGRESQL_WRITE_DSN must be set")
	}
	db, err := database.NewDB(dsn, "", 1, 1)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	return fn(db)
}

func printVersion(cmd *cobra.Command, db *gorm.DB) error {
	version, dirty, err := database.MigrationVersion(db)
	if err != nil {
		return err
	}
	if version == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}
