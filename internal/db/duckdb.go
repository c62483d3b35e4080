package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// DuckDB wraps a DuckDB sql.DB
type DuckDB struct {
	*sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB database
func OpenDuckDB(path string) (*DuckDB, error) {
	// 디렉토리 생성
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	// DuckDB 연결
	sqlDB, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}

	// 연결 테스트
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("DuckDB 연결 실패: %w", err)
	}

	d := &DuckDB{DB: sqlDB, path: path}

	// 스키마 초기화
	if err := d.Init(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return d, nil
}

// Init initializes the DuckDB schema
func (d *DuckDB) Init() error {
	return initSchema(context.Background(), d)
}

// Path returns the database file path
func (d *DuckDB) Path() string {
	return d.path
}

// Type returns TypeDuckDB
func (d *DuckDB) Type() DBType {
	return TypeDuckDB
}

// Rebind is a no-op; DuckDB accepts ? placeholders
func (d *DuckDB) Rebind(query string) string {
	return query
}

// GetVersion returns current schema version
func (d *DuckDB) GetVersion() (int, error) {
	version, err := getVersion(d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

// IsDuckDB checks if the path looks like a DuckDB file
func IsDuckDB(path string) bool {
	return filepath.Ext(path) == ".duckdb"
}
