package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gzhole/hookguard/internal/confusable"
	"github.com/gzhole/hookguard/internal/guard"
	"github.com/gzhole/hookguard/internal/normalize"
	"github.com/gzhole/hookguard/internal/policy"
	"github.com/gzhole/hookguard/internal/redact"
)

var explainCmd = &cobra.Command{
	Use:   "explain <mcp-write|secret-write|shell-secret>",
	Short: "Show how a guard decides a payload",
	Long: `Reads a hook payload from stdin and prints what the guard sees: the
normalized request, every classification fact with the rule entry that
matched, and the final decision and exit code.

Examples:
  echo '{"tool_name": "memory_store"}' | hookguard explain mcp-write
  echo '{"tool_input": {"path": ".env", "edits": "API_KEY=x"}}' | hookguard explain secret-write`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: guardNames(),
	RunE:      runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func guardNames() []string {
	var names []string
	for name := range guard.All() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runExplain(cmd *cobra.Command, args []string) error {
	g, ok := guard.All()[args[0]]
	if !ok {
		return fmt.Errorf("unknown guard %q (want one of %s)", args[0], strings.Join(guardNames(), ", "))
	}

	s := openSession(cmd)
	defer s.Close()

	payload, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	res := guard.NewEngine(s.tables, s.log).Evaluate(g, payload)
	fmt.Fprint(cmd.OutOrStdout(), renderExplanation(g, res))
	return nil
}

const labelWidth = 20

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#8E4EC6")).
			Padding(0, 1)

	// Wide enough for the longest fact name plus a gap.
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(labelWidth)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7A900"))

	permissionColors = map[policy.Permission]lipgloss.Color{
		policy.PermissionAllow: lipgloss.Color("#2E8B57"),
		policy.PermissionAsk:   lipgloss.Color("#D7A900"),
		policy.PermissionDeny:  lipgloss.Color("#D0342C"),
	}
)

func renderExplanation(g *guard.Guard, res guard.Result) string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(label), value)
	}

	b.WriteString(headerStyle.Render("hookguard " + g.Name))
	b.WriteString("\n\n")

	if res.Failure != guard.FailureNone {
		row("failure", res.Failure)
		row("error", redact.ForLog(fmt.Sprint(res.Err)))
	} else {
		row("kind", res.Request.Kind.String())
		for _, field := range requestFields(res.Request) {
			row(field[0], field[1])
		}
		if findings := confusable.Find(res.Request.Subject()); len(findings) > 0 {
			row("hidden chars", warnStyle.Render(confusable.Summary(findings)))
		}
	}

	if res.ShortCircuit {
		row("facts", dimStyle.Render("none (nothing to classify)"))
	} else {
		facts := make([]string, 0, len(res.Classification.Facts))
		for fact := range res.Classification.Facts {
			facts = append(facts, string(fact))
		}
		sort.Strings(facts)
		for _, name := range facts {
			fact := policy.Fact(name)
			value := fmt.Sprint(res.Classification.Facts[fact])
			if ev, ok := res.Classification.Evidence[fact]; ok {
				value += " " + dimStyle.Render("("+ev+")")
			}
			row(name, value)
		}
	}

	perm := res.Decision.Permission
	row("decision", lipgloss.NewStyle().Bold(true).Foreground(permissionColors[perm]).Render(string(perm)))
	if res.Decision.UserMessage != "" {
		row("user", res.Decision.UserMessage)
	}
	if res.Decision.AgentMessage != "" {
		row("agent", res.Decision.AgentMessage)
	}
	row("exit code", fmt.Sprint(g.ExitCode(perm)))

	return b.String()
}

func requestFields(req normalize.ActionRequest) [][2]string {
	switch req.Kind {
	case normalize.KindToolCall:
		return [][2]string{{"tool", req.DisplayName}, {"canonical", req.ToolName}}
	case normalize.KindFileWrite:
		return [][2]string{{"path", req.Path}, {"content", redact.ForLog(req.Content)}}
	case normalize.KindShellCommand:
		return [][2]string{{"command", redact.ForLog(req.Command)}}
	default:
		return nil
	}
}
