package policy

import (
	"fmt"
	"sort"
)

// Rule set names as they appear in rule files.
const (
	SetWriteTools     = "write_tools"
	SetSensitivePaths = "sensitive_paths"
	SetSecretContent  = "secret_content"
	SetShellFilter    = "shell_filter"
)

// Sets is the group of rule sets shared by rule files and packs.
type Sets struct {
	WriteTools     RuleSet `yaml:"write_tools,omitempty"`
	SensitivePaths RuleSet `yaml:"sensitive_paths,omitempty"`
	SecretContent  RuleSet `yaml:"secret_content,omitempty"`
	ShellFilter    RuleSet `yaml:"shell_filter,omitempty"`
}

// Tables is the complete, compiled rule configuration of one process.
type Tables struct {
	Version string `yaml:"version"`
	Sets    `yaml:",inline"`
}

// Set looks a rule set up by its file name.
func (t *Tables) Set(name string) (*RuleSet, bool) {
	switch name {
	case SetWriteTools:
		return &t.WriteTools, true
	case SetSensitivePaths:
		return &t.SensitivePaths, true
	case SetSecretContent:
		return &t.SecretContent, true
	case SetShellFilter:
		return &t.ShellFilter, true
	default:
		return nil, false
	}
}

// SetNames lists every rule set name in sorted order.
func SetNames() []string {
	names := []string{SetWriteTools, SetSensitivePaths, SetSecretContent, SetShellFilter}
	sort.Strings(names)
	return names
}

// Compile compiles every rule set.
func (t *Tables) Compile() error {
	for _, name := range SetNames() {
		set, _ := t.Set(name)
		if err := set.Compile(); err != nil {
			return fmt.Errorf("rule set %s: %w", name, err)
		}
	}
	return nil
}

// merge unions every set of s into t.
func (t *Tables) merge(s Sets) {
	t.WriteTools.merge(s.WriteTools)
	t.SensitivePaths.merge(s.SensitivePaths)
	t.SecretContent.merge(s.SecretContent)
	t.ShellFilter.merge(s.ShellFilter)
}

func (t *Tables) clone() *Tables {
	return &Tables{
		Version: t.Version,
		Sets: Sets{
			WriteTools:     t.WriteTools.clone(),
			SensitivePaths: t.SensitivePaths.clone(),
			SecretContent:  t.SecretContent.clone(),
			ShellFilter:    t.ShellFilter.clone(),
		},
	}
}
