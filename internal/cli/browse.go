package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/logging"
	"github.com/n0roo/widget-kit/internal/tui"
)

var browseUser string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "위젯 TUI 브라우저 실행",
	Long: `터미널에서 사용자의 위젯 목록을 탐색합니다.

키: n/p 페이지, c 카테고리, s 정렬 필드, o 정렬 방향, r 새로고침, q 종료`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVar(&browseUser, "user", "", "사용자 UUID (필수)")
	browseCmd.MarkFlagRequired("user")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if _, err := uuid.Parse(browseUser); err != nil {
		return fmt.Errorf("잘못된 사용자 UUID: %s", browseUser)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// TUI 화면을 가리지 않도록 로그 비활성화
	svc, _, cleanup, err := getWidgetService(cfg, logging.Discard(), nil)
	if err != nil {
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer cleanup()

	return tui.Run(svc, browseUser)
}
