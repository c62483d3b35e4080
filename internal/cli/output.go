package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printOK(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", green("✓"), fmt.Sprintf(format, a...))
}

func printWarn(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", yellow("!"), fmt.Sprintf(format, a...))
}

func printFail(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), fmt.Sprintf(format, a...))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
