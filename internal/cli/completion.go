package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/logging"
	"github.com/n0roo/widget-kit/internal/widget"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "쉘 자동완성 스크립트 생성",
	Long: `지정한 쉘에 대한 자동완성 스크립트를 생성합니다.

Bash:
  # 현재 세션에서만 활성화
  $ source <(widgetd completion bash)

  # 영구 설정 (Linux)
  $ widgetd completion bash > /etc/bash_completion.d/widgetd

Zsh:
  $ widgetd completion zsh > "${fpath[1]}/_widgetd"

Fish:
  $ widgetd completion fish > ~/.config/fish/completions/widgetd.fish

PowerShell:
  PS> widgetd completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerCompletions adds dynamic completions for widget commands
func registerCompletions() {
	// Widget ID 완성
	widgetGetCmd.ValidArgsFunction = completeWidgetIDs
	widgetUpdateCmd.ValidArgsFunction = completeWidgetIDs
	widgetDeleteCmd.ValidArgsFunction = completeWidgetIDs

	// 카테고리 완성
	categoryFn := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, c := range widget.Categories() {
			if strings.HasPrefix(string(c), strings.ToUpper(toComplete)) {
				out = append(out, string(c))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	for _, c := range []*cobra.Command{widgetCreateCmd, widgetUpdateCmd, widgetListCmd} {
		c.RegisterFlagCompletionFunc("category", categoryFn)
	}
	widgetListCmd.RegisterFlagCompletionFunc("sort", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return widget.SortFields, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("db-type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "duckdb", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// completeWidgetIDs completes IDs of the --user's widgets, newest first
func completeWidgetIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if _, err := uuid.Parse(widgetUser); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	svc, _, cleanup, err := getWidgetService(cfg, logging.Discard(), nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	page, err := svc.List(ctx, widgetUser, widget.ListQuery{Size: widget.MaxPageSize})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, w := range page.Content {
		if strings.HasPrefix(w.ID, strings.ToUpper(toComplete)) {
			completions = append(completions, w.ID+"\t"+truncate(w.Description, 40))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
