package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault_BuiltInTables(t *testing.T) {
	tables := mustDefault(t)

	if tables.Version != "1" {
		t.Errorf("expected version 1, got %q", tables.Version)
	}
	for _, name := range SetNames() {
		set, ok := tables.Set(name)
		if !ok {
			t.Fatalf("missing set %s", name)
		}
		if set.Size() == 0 {
			t.Errorf("set %s is empty", name)
		}
		if set.Description == "" {
			t.Errorf("set %s has no description", name)
		}
	}
	if _, ok := tables.Set("unknown"); ok {
		t.Error("unknown set name should not resolve")
	}
}

func TestLoad_EmptyPathAndMissingFile(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		tables, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if !tables.ClassifyToolName("memory_store").Has(FactWriteTool) {
			t.Errorf("Load(%q): expected built-in rules", path)
		}
	}
}

func TestLoad_ExtendsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
write_tools:
  exact: [send_message]
secret_content:
  patterns: ['private_key\s*=']
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	tables, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !tables.ClassifyToolName("send_message").Has(FactWriteTool) {
		t.Error("extra exact entry not applied")
	}
	if !tables.ClassifyToolName("memory_store").Has(FactWriteTool) {
		t.Error("built-in entries must survive an extra rule file")
	}
	if !tables.HasSecretContent("PRIVATE_KEY = abc") {
		t.Error("extra pattern not applied")
	}
}

func TestLoad_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad-yaml.yaml":  "write_tools: [unclosed",
		"bad-regex.yaml": "sensitive_paths:\n  patterns: ['[a-']\n",
	}

	for name, content := range tests {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTables_MarshalRoundTripsThroughYAML(t *testing.T) {
	tables := mustDefault(t)

	data, err := yaml.Marshal(tables)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	for _, name := range SetNames() {
		if !strings.Contains(out, name+":") {
			t.Errorf("rendered tables missing %s:\n%s", name, out)
		}
	}

	reparsed, err := parseTables(data)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reparsed.WriteTools.Size() != tables.WriteTools.Size() {
		t.Errorf("write_tools changed across render: %d vs %d", reparsed.WriteTools.Size(), tables.WriteTools.Size())
	}
}
