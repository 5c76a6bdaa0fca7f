package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite"
	"github.com/mannskor/ovingslogg/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes a SQLite connection for the local comment store
// and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&store.Comment{}); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("local comment store initialized", zap.String("path", path))
	}

	return db, nil
}
