package db

import (
	"context"
	"fmt"
	"strings"
)

// migration is one schema step. Statements run one at a time so every
// driver accepts them.
type migration struct {
	version    int
	name       string
	statements []string
	backfill   func(ctx context.Context, d Database) error
}

// 드라이버 공통 SQL만 사용 (SQLite, DuckDB, PostgreSQL)
var migrations = []migration{
	{
		version: 1,
		name:    "base",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS metadata (
    key VARCHAR(64) PRIMARY KEY,
    value VARCHAR(255),
    updated_at BIGINT NOT NULL DEFAULT 0
)`,
			`CREATE TABLE IF NOT EXISTS widgets (
    id VARCHAR(26) PRIMARY KEY,
    user_id VARCHAR(36) NOT NULL,
    description VARCHAR(1000) NOT NULL,
    category VARCHAR(16) NOT NULL,
    level INTEGER NOT NULL CHECK (level BETWEEN 1 AND 100),
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    version BIGINT NOT NULL DEFAULT 0
)`,
			`CREATE INDEX IF NOT EXISTS idx_widgets_user ON widgets(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_widgets_user_category ON widgets(user_id, category)`,
		},
	},
	{
		version: 2,
		name:    "widgets_created_index",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_widgets_user_created ON widgets(user_id, created_at)`,
		},
	},
	{
		version: 3,
		name:    "widgets_description_lc",
		statements: []string{
			`ALTER TABLE widgets ADD COLUMN description_lc VARCHAR(1000) DEFAULT ''`,
		},
		backfill: backfillDescriptionLC,
	},
}

// FoldDescription is the lower-casing stored in description_lc. SQL LOWER
// is not used since SQLite folds ASCII only.
func FoldDescription(s string) string {
	return strings.ToLower(s)
}

func backfillDescriptionLC(ctx context.Context, d Database) error {
	rows, err := d.QueryContext(ctx, `SELECT id, description FROM widgets`)
	if err != nil {
		return err
	}
	folded := make(map[string]string)
	for rows.Next() {
		var id, description string
		if err := rows.Scan(&id, &description); err != nil {
			rows.Close()
			return err
		}
		folded[id] = FoldDescription(description)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id, lc := range folded {
		if _, err := d.ExecContext(ctx, d.Rebind(`UPDATE widgets SET description_lc = ? WHERE id = ?`), lc, id); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion is the version Init brings a database to
var SchemaVersion = migrations[len(migrations)-1].version

// Tables lists every table owned by the schema, in copy order
var Tables = []string{"metadata", "widgets"}

// initSchema applies pending migrations and records the version
func initSchema(ctx context.Context, d Database) error {
	// metadata가 없으면 버전 0
	current, _ := d.GetVersion()

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.statements {
			if _, err := d.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("v%d(%s) 스키마 적용 실패: %w", m.version, m.name, err)
			}
		}
		if m.backfill != nil {
			if err := m.backfill(ctx, d); err != nil {
				return fmt.Errorf("v%d(%s) 데이터 보정 실패: %w", m.version, m.name, err)
			}
		}
	}

	_, err := d.ExecContext(ctx, d.Rebind(`INSERT INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		fmt.Sprintf("%d", SchemaVersion), nowMillis())
	if err != nil {
		return fmt.Errorf("버전 저장 실패: %w", err)
	}

	return nil
}

// getVersion reads schema_version from metadata
func getVersion(d Database) (int, error) {
	var version int
	err := d.QueryRowContext(context.Background(),
		`SELECT CAST(value AS INTEGER) FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
