package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rulesPath string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "hookguard",
	Short: "hookguard - policy hooks for AI coding agents",
	Long: `hookguard is a set of pre-action hooks for IDE coding agents. The host
pipes one JSON payload to a guard on stdin; the guard answers with one
JSON decision on stdout and an exit code:

  mcp-write     asks before MCP tools that write or change data
  secret-write  denies writing secrets into credential files
  shell-secret  asks before shell commands that may persist secrets

Register all three with:
  hookguard setup cursor`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Extra rule table merged over the built-in rules (default: rules.file from ~/.hookguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error (default: warn)")
}

// exitError carries a guard's exit code out of cobra without printing it.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(rootCmd)
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}
