package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQLite sql.DB with helper methods
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the SQLite database
func Open(path string) (*DB, error) {
	// 디렉토리 생성
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("DB 열기 실패: %w", err)
	}

	// 연결 테스트
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}

	// 스키마 자동 초기화
	if err := d.Init(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return d, nil
}

// Init initializes the database schema
func (d *DB) Init() error {
	return initSchema(context.Background(), d)
}

// GetVersion returns current schema version
func (d *DB) GetVersion() (int, error) {
	version, err := getVersion(d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// Type returns TypeSQLite
func (d *DB) Type() DBType {
	return TypeSQLite
}

// Rebind is a no-op for SQLite
func (d *DB) Rebind(query string) string {
	return query
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
