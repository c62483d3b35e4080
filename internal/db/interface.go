package db

import (
	"context"
	"database/sql"
	"os"

	"github.com/n0roo/widget-kit/internal/config"
)

// Database is the common interface for SQLite, DuckDB and PostgreSQL
type Database interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	Close() error
	Path() string
	Type() DBType
	// Rebind rewrites ? placeholders for the driver
	Rebind(query string) string
	GetVersion() (int, error)
	GetDB() *sql.DB
}

// Ensure every type implements Database
var _ Database = (*DB)(nil)
var _ Database = (*DuckDB)(nil)
var _ Database = (*Postgres)(nil)

// GetDB returns the underlying sql.DB for DB (SQLite)
func (d *DB) GetDB() *sql.DB {
	return d.DB
}

// GetDB returns the underlying sql.DB for DuckDB
func (d *DuckDB) GetDB() *sql.DB {
	return d.DB
}

// GetDB returns the underlying sql.DB for PostgreSQL
func (p *Postgres) GetDB() *sql.DB {
	return p.DB
}

// DBType represents the database type
type DBType string

const (
	TypeSQLite   DBType = "sqlite"
	TypeDuckDB   DBType = "duckdb"
	TypePostgres DBType = "postgres"
)

// OpenAuto opens the appropriate database based on configuration
func OpenAuto(cfg config.DatabaseConfig) (Database, error) {
	basePath := cfg.Path
	if basePath == "" {
		basePath = config.DefaultDBPath()
	}

	switch cfg.Type {
	case config.DBTypePostgres:
		return OpenPostgres(cfg.DSN)

	case config.DBTypeDuckDB:
		duckdbPath := basePath
		if !IsDuckDB(duckdbPath) {
			duckdbPath = config.DuckDBPath(basePath)
		}
		d, err := OpenDuckDB(duckdbPath)
		if err != nil {
			// DuckDB 실패 시 SQLite 폴백
			sqliteDB, sqliteErr := Open(basePath)
			if sqliteErr != nil {
				return nil, err // 원래 DuckDB 에러 반환
			}
			return sqliteDB, nil
		}
		return d, nil
	}

	// DuckDB 파일이 있고 SQLite가 없으면 DuckDB 사용
	duckdbPath := config.DuckDBPath(basePath)
	if _, err := os.Stat(duckdbPath); err == nil {
		if _, err := os.Stat(basePath); os.IsNotExist(err) {
			if d, err := OpenDuckDB(duckdbPath); err == nil {
				return d, nil
			}
		}
	}

	// 기본: SQLite
	return Open(basePath)
}
