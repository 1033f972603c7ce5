// internal/database/connection.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if isMemorySqlite(cfg) {
		// Every new connection to ":memory:" is a fresh, empty database.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("driver", cfg.Driver).Info("Database connection established")
	return db, nil
}

func isMemorySqlite(cfg config.DatabaseConfig) bool {
	return cfg.Driver == "sqlite" && (cfg.Path == ":memory:" || strings.Contains(cfg.Path, "mode=memory"))
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.CollectionRecord{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_collection_created ON audit_logs(collection, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}

// SeedInitialData creates the administrator account when no user exists.
// An empty configured password is replaced by a random one, logged once.
func SeedInitialData(db *gorm.DB, cfg config.AuthConfig) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	password := cfg.AdminPassword
	generated := false
	if password == "" {
		var err error
		if password, err = utils.GenerateRandomString(16); err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		generated = true
	}

	admin := &models.User{
		Username:    cfg.AdminUsername,
		DisplayName: cfg.AdminName,
		Role:        models.UserRoleAdmin,
		Status:      models.UserStatusActive,
	}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	entry := logrus.WithField("username", admin.Username)
	if generated {
		entry = entry.WithField("password", password)
	}
	entry.Info("Default admin user created")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

var ErrNoDatabase = errors.New("database not configured")

// HealthCheck pings the database with the caller's deadline.
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrNoDatabase
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
