package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 마이그레이션",
	Long: `설정된 DB를 열고 최신 스키마 버전까지 마이그레이션을 적용합니다.

이미 최신이면 아무것도 변경하지 않습니다.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.OpenAuto(cfg.Database)
	if err != nil {
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer database.Close()

	version, err := database.GetVersion()
	if err != nil {
		return fmt.Errorf("버전 조회 실패: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"type":           database.Type(),
			"path":           database.Path(),
			"schema_version": version,
		})
	}

	printOK("스키마 버전 %d (%s: %s)", version, database.Type(), database.Path())
	return nil
}
