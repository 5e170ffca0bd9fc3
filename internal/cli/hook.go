package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzhole/hookguard/internal/guard"
)

var mcpWriteCmd = newGuardCmd(guard.ToolCall(),
	"beforeMCPExecution hook: ask before MCP tools that write data",
	`Reads a beforeMCPExecution payload ({"tool_name": "..."}) from stdin and
answers {"permission": "allow"|"ask"|"deny", ...} on stdout.

Tool names are lower-cased and / and - are folded to _ before matching the
write_tools rule set. A match answers "ask"; anything else "allow".

Fails closed: unreadable input or an internal error answers "deny" with
exit code 2.`)

var secretWriteCmd = newGuardCmd(guard.FileWrite(),
	"preToolUse (Write) hook: deny writing secrets into credential files",
	`Reads a preToolUse payload ({"tool_input": {...}}) from stdin and answers
{"decision": "allow"|"deny", "reason": "..."} on stdout.

A write is denied (exit code 2) only when the target path matches
sensitive_paths AND the written content matches secret_content.

Fails open: unreadable input or an internal error answers "allow" with exit
code 0, so a broken hook never stalls ordinary edits. Older documentation
described this guard as fail-closed; it is not.`)

var shellSecretCmd = newGuardCmd(guard.Command(),
	"beforeShellExecution hook: ask before commands that may persist secrets",
	`Reads a beforeShellExecution payload ({"command": "..."}) from stdin and
answers {"permission": "ask", ...} for any non-empty command.

The guard relies on the host's matcher to select commands; "hookguard setup
cursor" registers it with the shell_filter rule set as that matcher. It never
classifies on its own, fails open and always exits 0.`)

func init() {
	rootCmd.AddCommand(mcpWriteCmd)
	rootCmd.AddCommand(secretWriteCmd)
	rootCmd.AddCommand(shellSecretCmd)
}

func newGuardCmd(g *guard.Guard, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   g.Name,
		Short: short,
		Long:  long,
		// Hosts may append arguments or flags we do not know; the payload on
		// stdin still gets an answer.
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuard(cmd, g)
		},
	}
}

// runGuard answers exactly one hook payload. Every outcome, including
// internal failures, is a decision on stdout; only the exit code travels back
// through cobra.
func runGuard(cmd *cobra.Command, g *guard.Guard) error {
	s := openSession(cmd)
	defer s.Close()

	if isTerminal(cmd.InOrStdin()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "hookguard %s: reading hook payload from stdin (end with Ctrl-D)\n", g.Name)
	}

	code := guard.NewEngine(s.tables, s.log).Run(g, cmd.InOrStdin(), cmd.OutOrStdout())
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}
