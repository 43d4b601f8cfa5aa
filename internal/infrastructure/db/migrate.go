package db

import (
	"context"
	"fmt"

	_ "video-uploader/migrations" // registers Go migrations with goose

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate applies every registered goose migration to the database behind gorm.
func Migrate(ctx context.Context, database *gorm.DB, log *zap.Logger) error {
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetLogger(zap.NewStdLog(log))

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err == nil {
		log.Info("database migrated", zap.Int64("version", version))
	}
	return nil
}
