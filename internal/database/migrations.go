package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := prepareGoose(logger); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", migrationsDir))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// GetMigrationStatus prints the applied/pending state of every migration
func GetMigrationStatus(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := prepareGoose(logger); err != nil {
		return err
	}

	return goose.Status(db, migrationsDir)
}

func prepareGoose(logger *zap.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetLogger(zap.NewStdLog(logger.Named("goose")))
	return nil
}

// ResetDatabase rolls every migration back and applies them again, leaving
// empty tables.
func ResetDatabase(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := prepareGoose(logger); err != nil {
		return err
	}

	logger.Warn("Resetting database", zap.String("dir", migrationsDir))
	if err := goose.Reset(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
