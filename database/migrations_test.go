package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The column types in the model tags must stay portable: the production
// dialect is MySQL but the test suites run against in-memory sqlite.
func TestMigrateOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"admins", "refresh_tokens", "revoked_tokens", "users",
		"plans", "investments", "transactions", "kyc_submissions", "settings",
	} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
