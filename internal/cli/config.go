package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/n0roo/widget-kit/internal/config"
	"github.com/n0roo/widget-kit/internal/db"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 관리",
	Long: `widgetd 설정을 관리합니다.

설정 파일: ./widgetd.yaml (--config 또는 WIDGETD_CONFIG로 변경)
우선순위: 기본값 < 설정 파일 < 환경변수 < 명령행 플래그

예시:
  widgetd config init          # 기본 설정 파일 생성
  widgetd config show          # 적용된 설정 표시
`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "적용된 설정 표시",
	Long:  `파일, 환경변수, 플래그가 모두 반영된 설정을 출력합니다. 시크릿은 가려집니다.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "설정 파일 생성",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "기존 파일 덮어쓰기")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shown := redactConfig(cfg)
	out := cmd.OutOrStdout()

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(shown)
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// redactConfig returns a copy safe to print
func redactConfig(cfg *config.Config) config.Config {
	shown := *cfg
	if shown.Auth.Secret != "" {
		shown.Auth.Secret = "xxxxx"
	}
	shown.Database.DSN = db.RedactDSN(shown.Database.DSN)
	return shown
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n--force 옵션으로 덮어쓸 수 있습니다", path)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	printOK("설정 파일 생성: %s", path)
	fmt.Println("  JWT 시크릿은 SUPABASE_JWT_SECRET 환경변수 또는 .env 로 설정하세요.")
	return nil
}
