package migration

import (
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	assert.True(t, names["0001_init.up.sql"])
	assert.True(t, names["0001_init.down.sql"])
}

func TestAutoMigrateSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"campaigns", "donations", "payment_notifications"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNilDatabase(t *testing.T) {
	_, err := Up(nil)
	assert.ErrorIs(t, err, errNilDatabase)
	assert.ErrorIs(t, AutoMigrate(nil), errNilDatabase)
}
