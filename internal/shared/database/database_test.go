package database

import (
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	ID   int64 `gorm:"primaryKey;autoIncrement:false"`
	Name string
}

func TestOpen_SQLiteDefaultPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := &config.Config{StorageDriver: config.StorageDriverSqlite, StoragePath: dir}

	db, err := Open(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db, &probe{}))
	require.NoError(t, db.Create(&probe{ID: 7, Name: "seven"}).Error)

	var got probe
	require.NoError(t, db.First(&got, 7).Error)
	assert.Equal(t, "seven", got.Name)
	assert.FileExists(t, filepath.Join(dir, "bot.db"))
}

func TestOpen_FileDriverHasNoBackend(t *testing.T) {
	_, err := Open(&config.Config{StorageDriver: config.StorageDriverFile})
	assert.Error(t, err)
}
