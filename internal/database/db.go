package database

import (
	"fmt"
	"log/slog"
	"time"

	"rbac/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&model.Role{},
		&model.User{},
		&model.Token{},
		&model.AuditLog{},
	}
}

// NewConnection opens the pool and migrates the schema. Unique-key violations surface as
// gorm.ErrDuplicatedKey so the repositories can classify them.
func NewConnection(dsn string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info("database ready", slog.Int("models", len(Models())))
	return db, nil
}
