package policy

import (
	"strings"
	"testing"
)

func TestClassifyToolName_ExactMembership(t *testing.T) {
	tables := mustDefault(t)

	for _, name := range tables.WriteTools.Exact {
		c := tables.ClassifyToolName(name)
		if !c.Has(FactWriteTool) {
			t.Errorf("tool %q: expected write tool", name)
		}
	}
	c := tables.ClassifyToolName("plan_task")
	if c.Evidence[FactWriteTool] != "exact:plan_task" {
		t.Errorf("expected exact evidence, got %q", c.Evidence[FactWriteTool])
	}
}

func TestClassifyToolName_Substring(t *testing.T) {
	tables := mustDefault(t)

	tests := []struct {
		name     string
		expected bool
	}{
		{"memory_updaterecord", true},
		{"github_create_pull_request", true},
		{"notion_append_block", false},
		{"fs_write_file", true},
		{"kv_put_value", true},
		{"shrimp_execute_task_now", true},
		{"read_file", false},
		{"list_entities", false},
		{"search_nodes", false},
		{"get_weather", false},
	}

	for _, tt := range tests {
		c := tables.ClassifyToolName(tt.name)
		if c.Has(FactWriteTool) != tt.expected {
			t.Errorf("tool %q: expected write=%v, evidence=%q", tt.name, tt.expected, c.Evidence[FactWriteTool])
		}
	}
}

func TestClassifyWrite_SensitivePaths(t *testing.T) {
	tables := mustDefault(t)

	tests := []struct {
		path     string
		expected bool
	}{
		{".env", true},
		{"app/.env.local", true},
		{"deploy/prod.env", true},
		{`C:\Users\me\project\.ENV`, true},
		{"secrets/db.yaml", true},
		{"aws_Credentials.json", true},
		{"certs/server.pem", true},
		{"tls/server.KEY", true},
		{`app\config\local\settings.json`, true},
		{"notes.md", false},
		{"src/main.go", false},
		{"keys.json", false},
		{"config/production.yaml", false},
	}

	for _, tt := range tests {
		if got := tables.IsSensitivePath(tt.path); got != tt.expected {
			t.Errorf("path %q: expected sensitive=%v, got %v", tt.path, tt.expected, got)
		}
	}
}

func TestClassifyWrite_SecretContent(t *testing.T) {
	tables := mustDefault(t)

	tests := []struct {
		content  string
		expected bool
	}{
		{"API_KEY=abc123", true},
		{"password = hunter2", true},
		{"apikey=xyz", true},
		{"client_secret=abc", true},
		{"token= xyz", true},
		{"authorization: Basic abc", true},
		{"curl -H 'Bearer abc'", true},
		{"BEARER\tabc", true},
		{"password\u00a0= hunter2", true},
		{"Bearer\u2003abc", true},
		{"hello world", false},
		{"the password is in the vault", false},
		{"Bearer", false},
		{"", false},
		{"   \n\t", false},
	}

	for _, tt := range tests {
		if got := tables.HasSecretContent(tt.content); got != tt.expected {
			t.Errorf("content %q: expected secret=%v, got %v", tt.content, tt.expected, got)
		}
	}
}

func TestClassifyWrite_ComputesBothFacts(t *testing.T) {
	tables := mustDefault(t)

	c := tables.ClassifyWrite("notes.md", "password=hunter2")
	if c.Has(FactSensitivePath) {
		t.Error("notes.md should not be a sensitive path")
	}
	if !c.Has(FactSecretContent) {
		t.Error("password= should be secret content")
	}
	if !strings.HasPrefix(c.Evidence[FactSecretContent], "pattern:") {
		t.Errorf("expected pattern evidence, got %q", c.Evidence[FactSecretContent])
	}
	if _, ok := c.Evidence[FactSensitivePath]; ok {
		t.Error("false facts should carry no evidence")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	tables := mustDefault(t)

	for i := 0; i < 3; i++ {
		a := tables.ClassifyWrite("secret/config.yaml", "token= xyz")
		if !a.Has(FactSensitivePath) || !a.Has(FactSecretContent) {
			t.Fatalf("iteration %d: expected both facts, got %v", i, a.Facts)
		}
	}
}
