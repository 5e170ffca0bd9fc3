package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/hookguard/internal/policy"
)

var disableFlag bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register hookguard with an IDE",
	Long: `Register the hookguard guards as IDE hooks.

Examples:
  hookguard setup cursor             # install all three hooks
  hookguard setup cursor --disable   # remove them`,
}

var setupCursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Install or remove the Cursor hooks",
	Long: `Merge the hookguard entries into ~/.cursor/hooks.json:

  beforeMCPExecution    hookguard mcp-write
  preToolUse (Write)    hookguard secret-write
  beforeShellExecution  hookguard shell-secret, matcher from the shell_filter rules

Existing entries for other tools are kept. Running setup again replaces the
hookguard entries, so it also refreshes the shell matcher after rule changes.
The previous file is saved as hooks.json.bak.`,
	Args: cobra.NoArgs,
	RunE: setupCursorCommand,
}

func init() {
	setupCursorCmd.Flags().BoolVar(&disableFlag, "disable", false, "Remove the hookguard hooks")
	setupCmd.AddCommand(setupCursorCmd)
	rootCmd.AddCommand(setupCmd)
}

const hookCommandPrefix = "hookguard "

type cursorHook struct {
	event   string
	command string
	matcher string
}

func cursorHooks(t *policy.Tables) []cursorHook {
	return []cursorHook{
		{event: "beforeMCPExecution", command: hookCommandPrefix + mcpWriteCmd.Name()},
		{event: "preToolUse", command: hookCommandPrefix + secretWriteCmd.Name(), matcher: "Write"},
		{event: "beforeShellExecution", command: hookCommandPrefix + shellSecretCmd.Name(), matcher: t.ShellFilter.Pattern()},
	}
}

func cursorHooksPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".cursor", "hooks.json"), nil
}

func setupCursorCommand(cmd *cobra.Command, args []string) error {
	s := openSession(cmd)
	defer s.Close()

	out := cmd.OutOrStdout()
	hooksPath, err := cursorHooksPath()
	if err != nil {
		return err
	}

	if disableFlag {
		return disableCursorHooks(out, hooksPath)
	}

	tables, err := s.tables()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	if binPath, err := exec.LookPath("hookguard"); err == nil {
		fmt.Fprintf(out, "hookguard found: %s\n", binPath)
	} else {
		fmt.Fprintln(out, "warning: hookguard is not in PATH; Cursor cannot run the hooks until it is.")
	}

	doc, existed, err := readHooksFile(hooksPath)
	if err != nil {
		return err
	}
	if _, ok := doc["version"]; !ok {
		doc["version"] = 1
	}

	hooks := getOrCreateMap(doc, "hooks")
	for _, h := range cursorHooks(tables) {
		entries, _ := withoutHookguard(getOrCreateSlice(hooks, h.event))
		entry := map[string]interface{}{"command": h.command}
		if h.matcher != "" {
			entry["matcher"] = h.matcher
		}
		hooks[h.event] = append(entries, entry)
	}

	if err := writeHooksFile(hooksPath, doc, existed); err != nil {
		return err
	}

	fmt.Fprintf(out, "Cursor hooks installed: %s\n", hooksPath)
	fmt.Fprintln(out)
	for _, h := range cursorHooks(tables) {
		fmt.Fprintf(out, "  %-22s %s\n", h.event, h.command)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Restart Cursor to activate the hooks.")
	fmt.Fprintln(out, "To disable: hookguard setup cursor --disable")
	return nil
}

func disableCursorHooks(out io.Writer, hooksPath string) error {
	if _, err := os.Stat(hooksPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No hooks.json found for Cursor, nothing to disable.")
		return nil
	}

	doc, _, err := readHooksFile(hooksPath)
	if err != nil {
		return err
	}

	hooks, ok := doc["hooks"].(map[string]interface{})
	if !ok {
		fmt.Fprintln(out, "Cursor hooks.json has no hooks, nothing to disable.")
		return nil
	}

	removed := false
	for event, raw := range hooks {
		entries, _ := raw.([]interface{})
		filtered, n := withoutHookguard(entries)
		if n == 0 {
			continue
		}
		removed = true
		if len(filtered) == 0 {
			delete(hooks, event)
		} else {
			hooks[event] = filtered
		}
	}

	if !removed {
		fmt.Fprintln(out, "hookguard is not registered in Cursor hooks.json, nothing to disable.")
		return nil
	}

	if err := writeHooksFile(hooksPath, doc, true); err != nil {
		return err
	}

	fmt.Fprintf(out, "hookguard hooks removed from %s\n", hooksPath)
	fmt.Fprintf(out, "Backup saved: %s.bak\n", hooksPath)
	fmt.Fprintln(out, "Re-enable anytime with: hookguard setup cursor")
	return nil
}

// withoutHookguard returns entries minus the ones that run hookguard, and how
// many were dropped.
func withoutHookguard(entries []interface{}) ([]interface{}, int) {
	kept := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		if isHookguardEntry(entry) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept, len(entries) - len(kept)
}

func isHookguardEntry(entry interface{}) bool {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return false
	}
	command, _ := m["command"].(string)
	return strings.HasPrefix(strings.TrimSpace(command), hookCommandPrefix)
}

func readHooksFile(path string) (map[string]interface{}, bool, error) {
	doc := make(map[string]interface{})
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return doc, true, nil
}

// writeHooksFile writes doc to path, first copying the current file to
// path.bak when backup is set.
func writeHooksFile(path string, doc map[string]interface{}, backup bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	if backup {
		prev, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := os.WriteFile(path+".bak", prev, 0644); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal hooks: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func getOrCreateMap(parent map[string]interface{}, key string) map[string]interface{} {
	if v, ok := parent[key].(map[string]interface{}); ok {
		return v
	}
	m := make(map[string]interface{})
	parent[key] = m
	return m
}

func getOrCreateSlice(parent map[string]interface{}, key string) []interface{} {
	if v, ok := parent[key].([]interface{}); ok {
		return v
	}
	return nil
}
