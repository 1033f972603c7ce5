package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/models"
)

func memoryConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"}
}

func TestHealthCheckPingsDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, HealthCheck(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, HealthCheck(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheckWithoutDatabase(t *testing.T) {
	assert.ErrorIs(t, HealthCheck(context.Background(), nil), ErrNoDatabase)
}

func TestInitializeRejectsUnknownDriver(t *testing.T) {
	_, err := Initialize(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateAndSeedAdmin(t *testing.T) {
	db, err := Initialize(memoryConfig())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, RunMigrations(db))
	require.NoError(t, SeedInitialData(db, config.AuthConfig{
		AdminUsername: "admin",
		AdminPassword: "s3cret",
		AdminName:     "Administrator",
	}))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)
	assert.NoError(t, admin.CheckPassword("s3cret"))

	// Seeding twice does not create a second account.
	require.NoError(t, SeedInitialData(db, config.AuthConfig{AdminUsername: "other"}))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedGeneratesPasswordWhenEmpty(t *testing.T) {
	db, err := Initialize(memoryConfig())
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, SeedInitialData(db, config.AuthConfig{AdminUsername: "admin"}))

	var admin models.User
	require.NoError(t, db.First(&admin).Error)
	assert.NotEmpty(t, admin.PasswordHash)
	assert.Error(t, admin.CheckPassword(""))
}

func TestWithTransactionRollsBack(t *testing.T) {
	db, err := Initialize(memoryConfig())
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, RunMigrations(db))

	err = WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.CollectionRecord{Name: "products", Payload: "[]"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.CollectionRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}
