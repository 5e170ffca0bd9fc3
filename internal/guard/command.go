package guard

import (
	"github.com/gzhole/hookguard/internal/normalize"
	"github.com/gzhole/hookguard/internal/policy"
)

// Command is the confirmation gate for shell commands. The host only invokes
// it for commands its own matcher (the shell_filter rule set) already
// selected, so it does not classify: any command gets "ask". It fails open
// and always exits 0.
func Command() *Guard {
	return &Guard{
		Name:          "shell-secret",
		Normalize:     normalize.ShellCommand,
		Resolve:       resolveCommand,
		Render:        renderPermission,
		PermissionKey: "permission",
		ExitCode:      func(policy.Permission) int { return 0 },
		OnMalformed:   policy.Allow(),
		OnFailure:     policy.Allow(),
	}
}

func resolveCommand(normalize.ActionRequest, policy.Classification) policy.Decision {
	return policy.Decision{
		Permission:  policy.PermissionAsk,
		UserMessage: "This command may write secrets to a file. Confirm you want to run it.",
		AgentMessage: "The command was flagged because it may persist secrets (e.g. to .env). " +
			"User authorization is required. Ask the user to confirm, then re-run if approved.",
	}
}

// All returns every guard keyed by its subcommand name.
func All() map[string]*Guard {
	guards := map[string]*Guard{}
	for _, g := range []*Guard{ToolCall(), FileWrite(), Command()} {
		guards[g.Name] = g
	}
	return guards
}
