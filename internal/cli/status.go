package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/server"
)

var statusURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "실행 중인 서버 상태 조회",
	Long: `실행 중인 widgetd 서버의 /api/status 를 조회합니다.

버전, DB 종류, 스키마 버전, SSE 연결 수, 가동 시간을 보여줍니다.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusURL, "url", "", "서버 주소 (기본: http://localhost:<설정 포트>)")
}

func fetchStatus(baseURL string) (*server.StatusResponse, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("서버 연결 실패: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("서버 응답 오류: %s", resp.Status)
	}

	var status server.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("응답 파싱 실패: %w", err)
	}
	return &status, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseURL := statusURL
	if baseURL == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	status, err := fetchStatus(baseURL)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(status)
	}

	icon := green("●")
	if status.Status != "ok" {
		icon = yellow("●")
	}
	fmt.Printf("%s widgetd %s (%s)\n", icon, status.Version, status.Status)
	fmt.Println()
	fmt.Printf("  %-12s %s (schema v%d)\n", "Database", status.Database, status.SchemaVersion)
	fmt.Printf("  %-12s %d\n", "SSE clients", status.SSEClients)
	fmt.Printf("  %-12s %s\n", "Uptime", status.Uptime)
	fmt.Printf("  %-12s %s\n", "Time", status.Timestamp.Local().Format("2006-01-02 15:04:05"))
	return nil
}
