package config

import (
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the directory holding local database files
	DataDirName = ".widgetd"
	// DefaultConfigFile is read when no config path is given
	DefaultConfigFile = "widgetd.yaml"
)

// DefaultDBPath returns the default SQLite path (.widgetd/widgets.db)
func DefaultDBPath() string {
	return filepath.Join(DataDirName, "widgets.db")
}

// DuckDBPath derives the DuckDB file path from a SQLite path
func DuckDBPath(sqlitePath string) string {
	ext := filepath.Ext(sqlitePath)
	return strings.TrimSuffix(sqlitePath, ext) + ".duckdb"
}
