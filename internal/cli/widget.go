package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/apperr"
	"github.com/n0roo/widget-kit/internal/logging"
	"github.com/n0roo/widget-kit/internal/widget"
)

var (
	widgetUser        string
	widgetDescription string
	widgetCategory    string
	widgetLevel       int
	widgetVersion     int64
	widgetPage        int
	widgetSize        int
	widgetSort        string
	widgetDirection   string
	widgetSearch      string
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "위젯 관리",
	Long: `API 서버를 거치지 않고 DB에 직접 위젯을 관리합니다.

모든 명령은 --user 로 지정한 사용자의 위젯만 다룹니다.`,
}

var widgetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "위젯 생성",
	Args:  cobra.NoArgs,
	RunE:  runWidgetCreate,
}

var widgetGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "위젯 조회",
	Args:  cobra.ExactArgs(1),
	RunE:  runWidgetGet,
}

var widgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "위젯 목록",
	Args:  cobra.NoArgs,
	RunE:  runWidgetList,
}

var widgetUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "위젯 수정",
	Long:  `지정한 필드만 수정합니다. --version 은 현재 버전이어야 합니다.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWidgetUpdate,
}

var widgetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "위젯 삭제",
	Args:  cobra.ExactArgs(1),
	RunE:  runWidgetDelete,
}

func init() {
	rootCmd.AddCommand(widgetCmd)
	widgetCmd.AddCommand(widgetCreateCmd)
	widgetCmd.AddCommand(widgetGetCmd)
	widgetCmd.AddCommand(widgetListCmd)
	widgetCmd.AddCommand(widgetUpdateCmd)
	widgetCmd.AddCommand(widgetDeleteCmd)

	widgetCmd.PersistentFlags().StringVar(&widgetUser, "user", "", "사용자 UUID (필수)")
	widgetCmd.MarkPersistentFlagRequired("user")

	for _, c := range []*cobra.Command{widgetCreateCmd, widgetUpdateCmd} {
		c.Flags().StringVarP(&widgetDescription, "description", "d", "", "설명 (3~1000자)")
		c.Flags().StringVarP(&widgetCategory, "category", "c", "", "카테고리 (BASIC, ADVANCED, PREMIUM, CUSTOM)")
		c.Flags().IntVarP(&widgetLevel, "level", "l", 0, "레벨 (1~100)")
	}
	widgetUpdateCmd.Flags().Int64Var(&widgetVersion, "version", 0, "현재 버전 (낙관적 잠금)")
	widgetUpdateCmd.MarkFlagRequired("version")

	widgetListCmd.Flags().StringVarP(&widgetCategory, "category", "c", "", "카테고리 필터")
	widgetListCmd.Flags().IntVar(&widgetPage, "page", 0, "페이지 (0부터)")
	widgetListCmd.Flags().IntVar(&widgetSize, "size", 0, "페이지 크기 (기본: 설정값)")
	widgetListCmd.Flags().StringVar(&widgetSort, "sort", widget.SortCreatedAt, "정렬 필드 ("+strings.Join(widget.SortFields, ", ")+")")
	widgetListCmd.Flags().StringVar(&widgetDirection, "direction", "DESC", "정렬 방향 (ASC, DESC)")
	widgetListCmd.Flags().StringVar(&widgetSearch, "search", "", "설명 검색어")

	// 플래그가 모두 정의된 뒤에 등록해야 함
	registerCompletions()
}

// withWidgetService runs fn with a service opened from the current config
func withWidgetService(fn func(ctx context.Context, svc *widget.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if verbose {
		if logger, err = newLogger(cfg); err != nil {
			return err
		}
	}

	svc, _, cleanup, err := getWidgetService(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer cleanup()

	return reportError(fn(context.Background(), svc))
}

// reportError prints API errors with their violations
func reportError(err error) error {
	if err == nil {
		return nil
	}
	e, ok := apperr.As(err)
	if !ok {
		return err
	}
	if jsonOut {
		printJSON(map[string]interface{}{
			"error":      e.Kind.Code(),
			"message":    e.Message,
			"status":     e.Status(),
			"violations": e.Violations,
		})
		return err
	}
	if e.Kind == apperr.KindValidation {
		for _, v := range e.Violations {
			printFail("%s: %s", v.Field, v.Message)
		}
		return fmt.Errorf("입력값 검증 실패 (%d건)", len(e.Violations))
	}
	return err
}

func runWidgetCreate(cmd *cobra.Command, args []string) error {
	req := &widget.CreateRequest{}
	if cmd.Flags().Changed("description") {
		req.Description = &widgetDescription
	}
	if cmd.Flags().Changed("category") {
		req.Category = &widgetCategory
	}
	if cmd.Flags().Changed("level") {
		req.Level = &widgetLevel
	}

	return withWidgetService(func(ctx context.Context, svc *widget.Service) error {
		resp, err := svc.Create(ctx, widgetUser, req)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(resp)
		}
		printOK("위젯 생성: %s", resp.ID)
		printWidget(resp)
		return nil
	})
}

func runWidgetGet(cmd *cobra.Command, args []string) error {
	return withWidgetService(func(ctx context.Context, svc *widget.Service) error {
		resp, err := svc.Get(ctx, widgetUser, args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(resp)
		}
		printWidget(resp)
		return nil
	})
}

func runWidgetList(cmd *cobra.Command, args []string) error {
	q := widget.ListQuery{
		Page:      widgetPage,
		Size:      widgetSize,
		Sort:      widgetSort,
		Direction: widget.ParseDirection(widgetDirection),
		Search:    widgetSearch,
	}
	if widgetCategory != "" {
		c, err := widget.ParseCategory(widgetCategory)
		if err != nil {
			return fmt.Errorf("잘못된 카테고리: %s (%s)", widgetCategory, widget.CategoryNames())
		}
		q.Category = &c
	}

	return withWidgetService(func(ctx context.Context, svc *widget.Service) error {
		page, err := svc.List(ctx, widgetUser, q)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(page)
		}

		if len(page.Content) == 0 {
			fmt.Println("위젯이 없습니다.")
			return nil
		}

		fmt.Printf("%-26s  %-9s  %5s  %7s  %s\n", "ID", "CATEGORY", "LEVEL", "VERSION", "DESCRIPTION")
		fmt.Println(strings.Repeat("-", 80))
		for _, w := range page.Content {
			fmt.Printf("%-26s  %-9s  %5d  %7d  %s\n", w.ID, w.Category, w.Level, w.Version, truncate(w.Description, 40))
		}
		fmt.Printf("\n페이지 %d/%d, 총 %d개\n", page.PageNumber+1, max(page.TotalPages, 1), page.TotalElements)
		return nil
	})
}

func runWidgetUpdate(cmd *cobra.Command, args []string) error {
	req := &widget.UpdateRequest{Version: &widgetVersion}
	if cmd.Flags().Changed("description") {
		req.Description = &widgetDescription
	}
	if cmd.Flags().Changed("category") {
		req.Category = &widgetCategory
	}
	if cmd.Flags().Changed("level") {
		req.Level = &widgetLevel
	}

	return withWidgetService(func(ctx context.Context, svc *widget.Service) error {
		resp, err := svc.Update(ctx, widgetUser, args[0], req)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(resp)
		}
		printOK("위젯 수정: %s (version %d)", resp.ID, resp.Version)
		return nil
	})
}

func runWidgetDelete(cmd *cobra.Command, args []string) error {
	return withWidgetService(func(ctx context.Context, svc *widget.Service) error {
		if err := svc.Delete(ctx, widgetUser, args[0]); err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]interface{}{"deleted": args[0]})
		}
		printOK("위젯 삭제: %s", args[0])
		return nil
	})
}

func printWidget(w *widget.Response) {
	fmt.Printf("  %-12s %s\n", "ID", w.ID)
	fmt.Printf("  %-12s %s\n", "User", w.UserID)
	fmt.Printf("  %-12s %s\n", "Category", cyan(string(w.Category)))
	fmt.Printf("  %-12s %d\n", "Level", w.Level)
	fmt.Printf("  %-12s %d\n", "Version", w.Version)
	fmt.Printf("  %-12s %s\n", "Created", w.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  %-12s %s\n", "Updated", w.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  %-12s %s\n", "Description", w.Description)
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
