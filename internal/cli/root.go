package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/config"
	"github.com/n0roo/widget-kit/internal/db"
	"github.com/n0roo/widget-kit/internal/logging"
	"github.com/n0roo/widget-kit/internal/widget"
)

var (
	cfgFile string
	dbPath  string
	dbType  string
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "widgetd",
	Short: "위젯 API 서버 및 관리 도구",
	Long: `widgetd - 사용자별 위젯 관리 API

JWT 인증 기반 위젯 CRUD API 서버와 관리 명령을 제공합니다.

주요 기능:
  - API 서버: /api/widgets REST API, SSE 이벤트, OpenAPI 문서
  - 위젯 관리: DB에 직접 위젯 생성/조회/수정/삭제
  - 토큰 발급: 개발용 JWT 발급
  - 저장소: SQLite (기본), DuckDB, PostgreSQL`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "설정 파일 경로 (기본: ./widgetd.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "DB 파일 경로 (기본: .widgetd/widgets.db)")
	rootCmd.PersistentFlags().StringVar(&dbType, "db-type", "", "DB 종류 (sqlite, duckdb, postgres)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "상세 출력")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON 출력")
}

// loadConfig loads the config file and applies command line flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dbType != "" {
		cfg.Database.Type = dbType
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("설정 오류:\n%w", errors.Join(errs...))
	}
	return cfg, nil
}

// newLogger builds the logger for CLI commands
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}

// getWidgetService opens the database and wires a service on top of it
func getWidgetService(cfg *config.Config, logger *slog.Logger, pub widget.Publisher) (*widget.Service, db.Database, func(), error) {
	database, err := db.OpenAuto(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}

	svc := widget.NewService(widget.NewSQLRepository(database), widget.Options{
		Logger:          logger,
		Publisher:       pub,
		DefaultPageSize: cfg.API.DefaultPageSize,
		MaxPageSize:     cfg.API.MaxPageSize,
	})
	return svc, database, func() { database.Close() }, nil
}
