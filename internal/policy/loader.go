package policy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Default returns the compiled built-in rule tables.
func Default() (*Tables, error) {
	t, err := parseTables(defaultRulesYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	if err := t.Compile(); err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	return t, nil
}

// Load returns the built-in tables extended with the rule file at path.
// An empty path or a missing file yields the built-in tables.
func Load(path string) (*Tables, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, err
	}

	extra, err := parseTables(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules %s: %w", path, err)
	}

	result := base.clone()
	result.merge(extra.Sets)
	if err := result.Compile(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return result, nil
}

func parseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.Version == "" {
		t.Version = "1"
	}
	return &t, nil
}
