package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gzhole/hookguard/internal/policy"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect rule tables and rule packs",
	Long: `Inspect the rule tables the guards classify with.

The effective tables are the built-in rules, extended by the rule file
(--rules or rules.file) and by every enabled pack in the packs directory
(default ~/.hookguard/packs). Entries are only ever added, never removed.

Examples:
  hookguard rules show                  # Effective tables as YAML
  hookguard rules show write_tools      # One rule set
  hookguard rules list                  # Installed packs
  hookguard rules disable team-secrets  # Disable a pack (prefix with underscore)
  hookguard rules enable team-secrets   # Enable it again`,
}

var rulesShowCmd = &cobra.Command{
	Use:       "show [set]",
	Short:     "Print the effective rule tables",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: policy.SetNames(),
	RunE:      rulesShow,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed rule packs",
	Args:  cobra.NoArgs,
	RunE:  rulesList,
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <pack-name>",
	Short: "Enable a disabled rule pack",
	Args:  cobra.ExactArgs(1),
	RunE:  rulesEnable,
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <pack-name>",
	Short: "Disable a rule pack (prefix with underscore)",
	Args:  cobra.ExactArgs(1),
	RunE:  rulesDisable,
}

func init() {
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesEnableCmd)
	rulesCmd.AddCommand(rulesDisableCmd)
	rootCmd.AddCommand(rulesCmd)
}

func rulesShow(cmd *cobra.Command, args []string) error {
	s := openSession(cmd)
	defer s.Close()

	tables, err := s.tables()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	var doc any = tables
	if len(args) == 1 {
		set, ok := tables.Set(args[0])
		if !ok {
			return fmt.Errorf("unknown rule set %q (want one of %s)", args[0], strings.Join(policy.SetNames(), ", "))
		}
		doc = map[string]*policy.RuleSet{args[0]: set}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func rulesList(cmd *cobra.Command, args []string) error {
	s := openSession(cmd)
	defer s.Close()

	dir := s.cfg.Rules.PacksDir
	base, err := policy.Default()
	if err != nil {
		return err
	}
	_, infos, err := policy.LoadPacks(dir, base)
	if err != nil {
		return fmt.Errorf("failed to load packs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No rule packs installed.")
		fmt.Fprintf(out, "\nTo install packs, copy YAML files to: %s\n", dir)
		return nil
	}

	fmt.Fprintln(out, "Installed Rule Packs:")
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for _, info := range infos {
		status := "on "
		if !info.Enabled {
			status = "off"
		}
		if info.Err != nil {
			status = "err"
		}
		fmt.Fprintf(out, "  %s  %-25s %s\n", status, info.Name, info.Description)
		switch {
		case info.Err != nil:
			fmt.Fprintf(out, "       %v\n", info.Err)
		case info.Version != "":
			fmt.Fprintf(out, "       v%s by %s  (%d rules)\n", info.Version, info.Author, info.RuleCount)
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "\nPacks directory: %s\n", dir)
	return nil
}

func rulesEnable(cmd *cobra.Command, args []string) error {
	return renamePack(cmd, args[0], true)
}

func rulesDisable(cmd *cobra.Command, args []string) error {
	return renamePack(cmd, args[0], false)
}

// renamePack toggles a pack by adding or removing the underscore prefix.
func renamePack(cmd *cobra.Command, name string, enable bool) error {
	s := openSession(cmd)
	defer s.Close()

	dir := s.cfg.Rules.PacksDir
	enabledPath := findPack(dir, name)
	disabledPath := findPack(dir, "_"+name)

	from, to, verb := enabledPath, disabledPathFor(dir, enabledPath, name), "disabled"
	if enable {
		from, to, verb = disabledPath, enabledPathFor(dir, disabledPath, name), "enabled"
	}

	out := cmd.OutOrStdout()
	if from == "" {
		if (enable && enabledPath != "") || (!enable && disabledPath != "") {
			fmt.Fprintf(out, "Pack '%s' is already %s.\n", name, verb)
			return nil
		}
		return fmt.Errorf("pack '%s' not found in %s", name, dir)
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename pack: %w", err)
	}
	fmt.Fprintf(out, "Pack '%s' %s.\n", name, verb)
	return nil
}

// findPack returns the path of base.yaml or base.yml in dir, or "".
func findPack(dir, base string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func disabledPathFor(dir, enabledPath, name string) string {
	return filepath.Join(dir, "_"+name+filepath.Ext(enabledPath))
}

func enabledPathFor(dir, disabledPath, name string) string {
	return filepath.Join(dir, name+filepath.Ext(disabledPath))
}
