package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n0roo/widget-kit/internal/server"
)

var openapiFormat string

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "OpenAPI 문서 출력",
	Long:  `API의 OpenAPI 3 문서를 JSON 또는 YAML로 출력합니다.`,
	RunE:  runOpenAPI,
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringVarP(&openapiFormat, "format", "f", "json", "출력 형식 (json, yaml)")
}

func runOpenAPI(cmd *cobra.Command, args []string) error {
	data, err := server.RenderOpenAPI(Version, openapiFormat)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Println()
	}
	return nil
}
