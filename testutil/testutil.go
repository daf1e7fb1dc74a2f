// Package testutil provides a migrated in-memory database for handler and
// router tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/packline/catalog/models"
)

// SetupTestDB opens a fresh in-memory sqlite database with every table migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := models.OpenDB(models.DBOptions{
		Driver: "sqlite",
		DSN:    ":memory:",
		// Every connection to :memory: is a separate database.
		MaxOpenConns: 1,
		Logger:       logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
