package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gzhole/hookguard/internal/policy"
)

func readHooks(t *testing.T, path string) map[string][]map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read hooks.json: %v", err)
	}
	var doc struct {
		Version int                                 `json:"version"`
		Hooks   map[string][]map[string]interface{} `json:"hooks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse hooks.json: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
	return doc.Hooks
}

func hookguardEntries(entries []map[string]interface{}) []map[string]interface{} {
	var ours []map[string]interface{}
	for _, e := range entries {
		if cmd, _ := e["command"].(string); strings.HasPrefix(cmd, hookCommandPrefix) {
			ours = append(ours, e)
		}
	}
	return ours
}

func TestSetupCursor_FreshInstall(t *testing.T) {
	home := isolatedHome(t)
	hooksPath := filepath.Join(home, ".cursor", "hooks.json")

	stdout, _, code := executeCLI(t, "", "setup", "cursor")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout, "Cursor hooks installed") {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	tables, err := policy.Default()
	if err != nil {
		t.Fatal(err)
	}

	hooks := readHooks(t, hooksPath)
	tests := []struct {
		event   string
		command string
		matcher string
	}{
		{"beforeMCPExecution", "hookguard mcp-write", ""},
		{"preToolUse", "hookguard secret-write", "Write"},
		{"beforeShellExecution", "hookguard shell-secret", tables.ShellFilter.Pattern()},
	}
	for _, tt := range tests {
		entries := hooks[tt.event]
		if len(entries) != 1 {
			t.Fatalf("%s: expected 1 entry, got %d", tt.event, len(entries))
		}
		if entries[0]["command"] != tt.command {
			t.Errorf("%s: expected command %q, got %v", tt.event, tt.command, entries[0]["command"])
		}
		matcher, _ := entries[0]["matcher"].(string)
		if matcher != tt.matcher {
			t.Errorf("%s: expected matcher %q, got %q", tt.event, tt.matcher, matcher)
		}
	}

	if _, err := os.Stat(hooksPath + ".bak"); !os.IsNotExist(err) {
		t.Error("a fresh install has nothing to back up")
	}
}

func TestSetupCursor_MergesAndIsIdempotent(t *testing.T) {
	home := isolatedHome(t)
	hooksPath := filepath.Join(home, ".cursor", "hooks.json")
	writeFile(t, hooksPath, `{
  "version": 1,
  "hooks": {
    "beforeShellExecution": [{"command": "other-tool check"}],
    "afterFileEdit": [{"command": "formatter"}]
  }
}`)

	for i := 0; i < 2; i++ {
		if _, _, code := executeCLI(t, "", "setup", "cursor"); code != 0 {
			t.Fatalf("run %d: expected exit 0, got %d", i, code)
		}
	}

	hooks := readHooks(t, hooksPath)
	shell := hooks["beforeShellExecution"]
	if len(shell) != 2 {
		t.Fatalf("expected foreign + hookguard shell entries, got %v", shell)
	}
	if shell[0]["command"] != "other-tool check" {
		t.Errorf("foreign entry must be kept first, got %v", shell[0])
	}
	for _, event := range []string{"beforeMCPExecution", "preToolUse", "beforeShellExecution"} {
		if n := len(hookguardEntries(hooks[event])); n != 1 {
			t.Errorf("%s: expected exactly one hookguard entry, got %d", event, n)
		}
	}
	if len(hooks["afterFileEdit"]) != 1 {
		t.Errorf("unrelated events must be untouched, got %v", hooks["afterFileEdit"])
	}

	if _, err := os.Stat(hooksPath + ".bak"); err != nil {
		t.Errorf("expected backup: %v", err)
	}
}

func TestSetupCursor_RulesExtendShellMatcher(t *testing.T) {
	home := isolatedHome(t)
	rules := filepath.Join(home, "rules.yaml")
	writeFile(t, rules, "shell_filter:\n  patterns:\n    - 'vault\\s+kv\\s+put'\n")

	if _, _, code := executeCLI(t, "", "--rules", rules, "setup", "cursor"); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	hooks := readHooks(t, filepath.Join(home, ".cursor", "hooks.json"))
	matcher, _ := hooks["beforeShellExecution"][0]["matcher"].(string)
	if !strings.HasSuffix(matcher, `|vault\s+kv\s+put`) {
		t.Errorf("expected extra pattern in matcher, got %q", matcher)
	}
}

func TestSetupCursor_Disable(t *testing.T) {
	home := isolatedHome(t)
	hooksPath := filepath.Join(home, ".cursor", "hooks.json")

	stdout, _, _ := executeCLI(t, "", "setup", "cursor", "--disable")
	if !strings.Contains(stdout, "nothing to disable") {
		t.Errorf("expected nothing to disable, got %q", stdout)
	}

	writeFile(t, hooksPath, `{"version": 1, "hooks": {"beforeShellExecution": [{"command": "other-tool check"}]}}`)
	if _, _, code := executeCLI(t, "", "setup", "cursor"); code != 0 {
		t.Fatalf("install failed with %d", code)
	}

	stdout, _, code := executeCLI(t, "", "setup", "cursor", "--disable")
	if code != 0 {
		t.Fatalf("disable failed with %d", code)
	}
	if !strings.Contains(stdout, "hookguard hooks removed") {
		t.Errorf("unexpected output %q", stdout)
	}

	hooks := readHooks(t, hooksPath)
	if _, ok := hooks["beforeMCPExecution"]; ok {
		t.Error("emptied events must be removed")
	}
	if _, ok := hooks["preToolUse"]; ok {
		t.Error("emptied events must be removed")
	}
	if shell := hooks["beforeShellExecution"]; len(shell) != 1 || shell[0]["command"] != "other-tool check" {
		t.Errorf("foreign entry must survive, got %v", shell)
	}

	stdout, _, _ = executeCLI(t, "", "setup", "cursor", "--disable")
	if !strings.Contains(stdout, "not registered") {
		t.Errorf("expected not registered, got %q", stdout)
	}
}

func TestSetupCursor_InvalidHooksFile(t *testing.T) {
	home := isolatedHome(t)
	writeFile(t, filepath.Join(home, ".cursor", "hooks.json"), "{not json")

	_, stderr, code := executeCLI(t, "", "setup", "cursor")
	if code != 1 || !strings.Contains(stderr, "failed to parse") {
		t.Errorf("expected parse error, got %d %q", code, stderr)
	}
}

func TestSetupCursor_NoHomeDirectory(t *testing.T) {
	t.Setenv("HOME", "")

	_, stderr, code := executeCLI(t, "", "setup", "cursor")
	if code != 1 || !strings.Contains(stderr, "home directory") {
		t.Errorf("expected home directory error, got %d %q", code, stderr)
	}
}
