package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func mustDefault(t *testing.T) *Tables {
	t.Helper()
	tables, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return tables
}

func TestLoadPacks_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	base := mustDefault(t)

	result, infos, err := LoadPacks(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected 0 pack infos, got %d", len(infos))
	}
	if result.WriteTools.Size() != base.WriteTools.Size() {
		t.Errorf("expected %d write-tool entries, got %d", base.WriteTools.Size(), result.WriteTools.Size())
	}
}

func TestLoadPacks_NonExistentDir(t *testing.T) {
	base := mustDefault(t)
	result, _, err := LoadPacks("/nonexistent/path/packs", base)
	if err != nil {
		t.Fatalf("unexpected error for non-existent dir: %v", err)
	}
	if result != base {
		t.Errorf("expected base tables returned unchanged")
	}
}

func TestLoadPacks_MergesRuleSets(t *testing.T) {
	dir := t.TempDir()
	base := mustDefault(t)

	packYAML := `
name: "Jira Pack"
description: "Write tools of the Jira MCP server"
version: "1.0.0"
author: "Test"
write_tools:
  exact:
    - transition_issue
    - memory_store
sensitive_paths:
  patterns:
    - '\.npmrc$'
`
	if err := os.WriteFile(filepath.Join(dir, "jira.yaml"), []byte(packYAML), 0644); err != nil {
		t.Fatal(err)
	}

	result, infos, err := LoadPacks(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(infos) != 1 {
		t.Fatalf("expected 1 pack info, got %d", len(infos))
	}
	if infos[0].Name != "Jira Pack" {
		t.Errorf("expected pack name 'Jira Pack', got %q", infos[0].Name)
	}
	if infos[0].RuleCount != 3 {
		t.Errorf("expected 3 entries in pack, got %d", infos[0].RuleCount)
	}
	if !infos[0].Enabled {
		t.Error("expected pack to be enabled")
	}

	// memory_store is already built in, so only one exact entry is new.
	if got, want := len(result.WriteTools.Exact), len(base.WriteTools.Exact)+1; got != want {
		t.Errorf("expected %d exact write tools, got %d", want, got)
	}
	if c := result.ClassifyToolName("transition_issue"); !c.Has(FactWriteTool) {
		t.Error("pack write tool should classify as write")
	}
	if !result.IsSensitivePath("/home/u/.npmrc") {
		t.Error("pack path pattern should classify as sensitive")
	}
}

func TestLoadPacks_DisabledPack(t *testing.T) {
	dir := t.TempDir()
	base := mustDefault(t)

	packYAML := `
name: "Disabled Pack"
write_tools:
  exact: [read_file]
`
	// Prefix with underscore to disable
	if err := os.WriteFile(filepath.Join(dir, "_disabled-pack.yaml"), []byte(packYAML), 0644); err != nil {
		t.Fatal(err)
	}

	result, infos, err := LoadPacks(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(infos) != 1 {
		t.Fatalf("expected 1 pack info, got %d", len(infos))
	}
	if infos[0].Enabled {
		t.Error("expected pack to be disabled")
	}
	if c := result.ClassifyToolName("read_file"); c.Has(FactWriteTool) {
		t.Error("disabled pack entries should not merge")
	}
}

func TestLoadPacks_BadPackSkipped(t *testing.T) {
	dir := t.TempDir()
	base := mustDefault(t)

	bad := `
name: "Broken"
secret_content:
  patterns: ['(unclosed']
`
	good := `
name: "Good"
write_tools:
  exact: [send_email]
`
	os.WriteFile(filepath.Join(dir, "a-broken.yaml"), []byte(bad), 0644)
	os.WriteFile(filepath.Join(dir, "b-good.yml"), []byte(good), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	result, infos, err := LoadPacks(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 pack infos, got %d", len(infos))
	}
	if infos[0].Err == nil {
		t.Error("expected broken pack to carry its error")
	}
	if c := result.ClassifyToolName("send_email"); !c.Has(FactWriteTool) {
		t.Error("good pack should still merge")
	}
}

func TestLoadPacks_DoesNotMutateBase(t *testing.T) {
	dir := t.TempDir()
	base := mustDefault(t)
	baseExact := len(base.WriteTools.Exact)
	basePatterns := len(base.SensitivePaths.Patterns)

	packYAML := `
name: "Mutation Test"
write_tools:
  exact: [extra_tool]
sensitive_paths:
  patterns: ['\.extra$']
`
	os.WriteFile(filepath.Join(dir, "mutation.yaml"), []byte(packYAML), 0644)

	LoadPacks(dir, base)

	if len(base.WriteTools.Exact) != baseExact {
		t.Errorf("base write tools were mutated: expected %d, got %d", baseExact, len(base.WriteTools.Exact))
	}
	if len(base.SensitivePaths.Patterns) != basePatterns {
		t.Errorf("base path patterns were mutated: expected %d, got %d", basePatterns, len(base.SensitivePaths.Patterns))
	}
	if c := base.ClassifyToolName("extra_tool"); c.Has(FactWriteTool) {
		t.Error("base tables should not see pack entries")
	}
}
