package db

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// MigrationResult contains export statistics
type MigrationResult struct {
	TablesProcessed int
	RowsMigrated    map[string]int
	Errors          []string
}

// ExportToDuckDB copies every schema table from src into a fresh DuckDB file
func ExportToDuckDB(ctx context.Context, src Database, duckdbPath string) (*MigrationResult, error) {
	result := &MigrationResult{
		RowsMigrated: make(map[string]int),
	}

	// 기존 DuckDB 파일 백업
	if _, err := os.Stat(duckdbPath); err == nil {
		if err := os.Rename(duckdbPath, duckdbPath+".backup"); err != nil {
			return nil, fmt.Errorf("기존 파일 백업 실패: %w", err)
		}
	}

	// DuckDB 열기 (새로 생성)
	duckDB, err := OpenDuckDB(duckdbPath)
	if err != nil {
		return nil, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}
	defer duckDB.Close()

	for _, table := range Tables {
		count, err := copyTable(ctx, src, duckDB, table)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", table, err))
			continue
		}
		result.RowsMigrated[table] = count
		result.TablesProcessed++
	}

	return result, nil
}

var tableColumns = map[string][]string{
	"metadata": {"key", "value", "updated_at"},
	"widgets":  {"id", "user_id", "description", "description_lc", "category", "level", "created_at", "updated_at", "version"},
}

// copyTable copies a single table; existing keys in dst are overwritten
func copyTable(ctx context.Context, src, dst Database, table string) (int, error) {
	columns, ok := tableColumns[table]
	if !ok {
		return 0, fmt.Errorf("알 수 없는 테이블: %s", table)
	}

	columnList := strings.Join(columns, ", ")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	rows, err := src.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s`, columnList, table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	// 스키마 초기화로 생긴 metadata 행과 충돌 방지
	insertQuery := dst.Rebind(fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, table, columnList, placeholders))

	count := 0
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return count, fmt.Errorf("행 읽기 실패: %w", err)
		}

		if _, err := dst.ExecContext(ctx, insertQuery, values...); err != nil {
			return count, fmt.Errorf("행 삽입 실패: %w", err)
		}
		count++
	}

	return count, rows.Err()
}
