package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/auth"
	"github.com/n0roo/widget-kit/internal/config"
	"github.com/n0roo/widget-kit/internal/db"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "구성 상태 확인",
	Long:  `설정, JWT 시크릿, DB 연결과 스키마 버전을 점검합니다.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// CheckResult represents a single check result
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // ok, warning, error
	Message string `json:"message"`
}

// runChecks inspects cfg; it never fails, problems become results
func runChecks(cfg *config.Config) []CheckResult {
	var checks []CheckResult

	// 1. 시스템 정보
	checks = append(checks, CheckResult{
		Name:    "System",
		Status:  "ok",
		Message: fmt.Sprintf("%s/%s %s", runtime.GOOS, runtime.GOARCH, runtime.Version()),
	})

	// 2. 설정
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, err := range errs {
			checks = append(checks, CheckResult{Name: "Config", Status: "error", Message: err.Error()})
		}
	} else {
		checks = append(checks, CheckResult{Name: "Config", Status: "ok", Message: "유효함"})
	}

	// 3. JWT 시크릿
	if _, err := auth.DecodeSecret(cfg.Auth.Secret); err != nil {
		checks = append(checks, CheckResult{
			Name:    "JWT Secret",
			Status:  "error",
			Message: fmt.Sprintf("%v - serve 실행 불가", err),
		})
	} else {
		checks = append(checks, CheckResult{Name: "JWT Secret", Status: "ok", Message: "설정됨"})
	}

	// 4. DB 연결 및 스키마
	database, err := db.OpenAuto(cfg.Database)
	if err != nil {
		checks = append(checks, CheckResult{
			Name:    "Database",
			Status:  "error",
			Message: fmt.Sprintf("열기 실패: %v", err),
		})
		return checks
	}
	defer database.Close()

	version, err := database.GetVersion()
	switch {
	case err != nil:
		checks = append(checks, CheckResult{Name: "Database", Status: "error", Message: fmt.Sprintf("버전 조회 실패: %v", err)})
	case version < db.SchemaVersion:
		checks = append(checks, CheckResult{Name: "Database", Status: "warning", Message: fmt.Sprintf("v%d < v%d (migrate 필요)", version, db.SchemaVersion)})
	default:
		checks = append(checks, CheckResult{Name: "Database", Status: "ok", Message: fmt.Sprintf("%s v%d (%s)", database.Type(), version, database.Path())})
	}

	// 요청한 종류와 실제로 열린 종류가 다르면 폴백된 것
	if string(database.Type()) != cfg.Database.Type {
		checks = append(checks, CheckResult{
			Name:    "Database Type",
			Status:  "warning",
			Message: fmt.Sprintf("%s 요청, %s 사용 중", cfg.Database.Type, database.Type()),
		})
	}

	return checks
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dbType != "" {
		cfg.Database.Type = dbType
	}

	checks := runChecks(cfg)

	// 출력
	if jsonOut {
		return printJSON(checks)
	}

	fmt.Println(bold("widgetd doctor"))
	fmt.Println()

	hasError := false
	for _, c := range checks {
		var icon string
		switch c.Status {
		case "ok":
			icon = green("✓")
		case "warning":
			icon = yellow("!")
		case "error":
			icon = red("✗")
			hasError = true
		}
		fmt.Printf("%s %s: %s\n", icon, c.Name, c.Message)
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("점검 실패: 위 메시지를 확인하세요")
	}
	printOK("모든 검사를 통과했습니다.")

	return nil
}
