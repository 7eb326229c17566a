// Package database opens the relational backends selected by storage_driver.
package database

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	"github.com/samber/oops"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to sqlite or postgres. For sqlite an empty DSN means
// <storage_path>/bot.db.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.StorageDriver {
	case config.StorageDriverSqlite:
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = filepath.Join(cfg.StoragePath, "bot.db")
		}
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	case config.StorageDriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, oops.With("storage_driver", cfg.StorageDriver).Errorf("driver has no relational backend")
	}

	return open(dialector)
}

// OpenSQLite opens a sqlite file directly; used by tests and tooling.
func OpenSQLite(path string) (*gorm.DB, error) {
	if err := ensureDirForSQLite(path); err != nil {
		return nil, err
	}
	return open(sqlite.Open(path))
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	dbLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, oops.With("dialect", dialector.Name(), "context", "failed to open database").Wrap(err)
	}
	return db, nil
}

// Migrate runs AutoMigrate for every record type.
func Migrate(db *gorm.DB, records ...any) error {
	if err := db.AutoMigrate(records...); err != nil {
		return oops.With("context", "failed to migrate database").Wrap(err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.With("dir", dir, "context", "failed to create database directory").Wrap(err)
	}
	return nil
}
