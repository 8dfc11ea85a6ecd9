// Package store provides the persistence layer for librakeep.
//
// It owns the database handle, schema migration, and the atomic-unit
// primitive used whenever two entities must move together (a Borrow and
// its Book). Domain repositories live with their models and receive the
// *gorm.DB from here.
package store

import (
	"context"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/librakeep/librakeep/pkg/config"
	"github.com/librakeep/librakeep/pkg/errors"
)

// Store wraps the database connection
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database
func Open(cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Type {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, errors.NewStoreFailureError("failed to create database directory", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
			// Map driver unique-constraint failures to gorm.ErrDuplicatedKey
			// so repositories can detect them portably.
			TranslateError: true,
		})
		if err != nil {
			return nil, errors.NewStoreFailureError("failed to connect to database", err)
		}
		return &Store{db: db}, nil
	default:
		return nil, errors.NewConfigInvalidError("unsupported database type: " + cfg.Type)
	}
}

// DB returns the underlying database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate runs schema migration for the given models
func (s *Store) Migrate(models ...interface{}) error {
	if err := s.db.AutoMigrate(models...); err != nil {
		return errors.NewStoreFailureError("failed to migrate database", err)
	}
	return nil
}

// WithTx runs fn inside a single transaction. If fn returns an error the
// transaction is rolled back and no partial state is visible to subsequent
// reads. Structured domain errors pass through unchanged; anything else is
// wrapped as a store failure.
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if errors.Get(err) != nil {
		return err
	}
	return errors.NewStoreFailureError("transaction failed", err)
}

// HealthCheck verifies the database connection is alive
func (s *Store) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.NewStoreFailureError("failed to get database instance", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return errors.NewStoreFailureError("database ping failed", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.NewStoreFailureError("failed to get database instance", err)
	}
	return sqlDB.Close()
}
