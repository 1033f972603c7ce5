package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}
