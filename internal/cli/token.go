package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/auth"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "개발용 JWT 발급",
	Long: `설정된 시크릿으로 HS256 토큰을 발급합니다.

발급된 토큰은 Authorization: Bearer <token> 헤더로 사용합니다.
--user 를 생략하면 새 UUID를 사용합니다.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "사용자 UUID")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "유효 기간")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	userID := uuid.New()
	if tokenUser != "" {
		userID, err = uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("잘못된 사용자 UUID: %s", tokenUser)
		}
	}

	issuer, err := auth.NewIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	token, err := issuer.Issue(userID, tokenTTL)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"user_id":    userID.String(),
			"token":      token,
			"expires_at": time.Now().Add(tokenTTL).UTC(),
		})
	}

	if verbose {
		printOK("사용자 %s, 만료 %s", userID, time.Now().Add(tokenTTL).Format(time.RFC3339))
	}
	fmt.Println(token)
	return nil
}
