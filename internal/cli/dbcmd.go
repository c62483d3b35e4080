package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/config"
	"github.com/n0roo/widget-kit/internal/db"
)

var (
	exportTarget string
	exportForce  bool
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "DB 관리",
	Long:  `DB 내보내기 등 저장소 관리 명령입니다.`,
}

var dbExportDuckDBCmd = &cobra.Command{
	Use:   "export-duckdb",
	Short: "DuckDB 파일로 내보내기",
	Long: `현재 DB(SQLite, PostgreSQL 등)의 모든 테이블을 DuckDB 파일로 복사합니다.

기존 대상 파일은 .backup 으로 이름이 바뀝니다.`,
	RunE: runDBExportDuckDB,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbExportDuckDBCmd)

	dbExportDuckDBCmd.Flags().StringVar(&exportTarget, "to", "", "대상 DuckDB 경로 (기본: DB 경로의 .duckdb)")
	dbExportDuckDBCmd.Flags().BoolVar(&exportForce, "force", false, "기존 파일 덮어쓰기")
}

func runDBExportDuckDB(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target := exportTarget
	if target == "" {
		target = config.DuckDBPath(cfg.Database.Path)
	}

	// 기존 DuckDB 파일 확인
	if _, err := os.Stat(target); err == nil && !exportForce {
		return fmt.Errorf("DuckDB 파일이 이미 존재합니다: %s\n--force 옵션으로 덮어쓸 수 있습니다", target)
	}

	src, err := db.OpenAuto(cfg.Database)
	if err != nil {
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer src.Close()

	if src.Type() == db.TypeDuckDB && src.Path() == target {
		return fmt.Errorf("원본과 대상이 같습니다: %s", target)
	}

	if !jsonOut {
		fmt.Printf("내보내기 시작...\n")
		fmt.Printf("   소스: %s (%s)\n", src.Path(), src.Type())
		fmt.Printf("   대상: %s\n", target)
		fmt.Println()
	}

	result, err := db.ExportToDuckDB(context.Background(), src, target)
	if err != nil {
		return fmt.Errorf("내보내기 실패: %w", err)
	}

	if jsonOut {
		return printJSON(result)
	}

	printOK("내보내기 완료 (테이블 %d개)", result.TablesProcessed)
	totalRows := 0
	for _, table := range db.Tables {
		if count := result.RowsMigrated[table]; count > 0 {
			fmt.Printf("   - %s: %d행\n", table, count)
			totalRows += count
		}
	}
	fmt.Printf("\n   총 %d행\n", totalRows)

	if len(result.Errors) > 0 {
		fmt.Println()
		for _, e := range result.Errors {
			printWarn("%s", e)
		}
	}

	fmt.Printf("\nDuckDB를 사용하려면:\n")
	fmt.Printf("   export WIDGETD_DB_TYPE=duckdb\n")
	return nil
}
