package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/auth"
	"github.com/n0roo/widget-kit/internal/config"
	"github.com/n0roo/widget-kit/internal/db"
	"github.com/n0roo/widget-kit/internal/events"
	"github.com/n0roo/widget-kit/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 실행",
	Long: `위젯 REST API 서버를 실행합니다.

JWT 시크릿(SUPABASE_JWT_SECRET 또는 auth.secret)이 필요합니다.
SIGINT/SIGTERM 수신 시 진행 중인 요청을 마무리하고 종료합니다.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "서버 포트 (기본: 설정값 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if errs := cfg.ValidateForServe(); len(errs) > 0 {
		return fmt.Errorf("설정 오류:\n%w", errors.Join(errs...))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	validator, err := auth.NewValidator(cfg.Auth)
	if err != nil {
		return err
	}

	hub := events.NewSSEServer(logger)
	hub.Start()

	svc, database, cleanup, err := getWidgetService(cfg, logger, events.NewPublisher(hub))
	if err != nil {
		hub.Stop()
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer cleanup()

	srv := server.New(server.Deps{
		Config:    *cfg,
		Service:   svc,
		Validator: validator,
		Database:  database,
		Hub:       hub,
		Logger:    logger,
		Version:   Version,
	})

	printBanner(cfg, database)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		hub.Stop()
		return err
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("서버 종료 실패: %w", err)
	}
	return <-errCh
}

func printBanner(cfg *config.Config, database db.Database) {
	fmt.Println()
	fmt.Printf("  %s %s\n", bold("widgetd"), Version)
	fmt.Printf("  %-10s %s\n", "API", cyan(fmt.Sprintf("http://localhost:%d/api/widgets", cfg.Server.Port)))
	fmt.Printf("  %-10s %s\n", "Docs", cyan(fmt.Sprintf("http://localhost:%d/api/docs", cfg.Server.Port)))
	fmt.Printf("  %-10s %s\n", "Events", cyan(fmt.Sprintf("http://localhost:%d/api/widgets/events", cfg.Server.Port)))
	fmt.Printf("  %-10s %s (%s)\n", "Database", green(string(database.Type())), database.Path())
	fmt.Printf("  %-10s %s/%s\n", "Logging", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Println()
}
