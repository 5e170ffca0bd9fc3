package guard

import (
	"fmt"

	"github.com/gzhole/hookguard/internal/normalize"
	"github.com/gzhole/hookguard/internal/policy"
)

// permissionResponse is the document expected by beforeMCPExecution and
// beforeShellExecution hooks.
type permissionResponse struct {
	Permission   policy.Permission `json:"permission"`
	UserMessage  string            `json:"user_message,omitempty"`
	AgentMessage string            `json:"agent_message,omitempty"`
}

func renderPermission(d policy.Decision) any {
	return permissionResponse{
		Permission:   d.Permission,
		UserMessage:  d.UserMessage,
		AgentMessage: d.AgentMessage,
	}
}

// ToolCall asks for confirmation before any MCP tool that looks like it
// writes or changes data. It fails closed: unreadable input is denied.
func ToolCall() *Guard {
	return &Guard{
		Name:      "mcp-write",
		Normalize: normalize.ToolCall,
		Classify: func(t *policy.Tables, req normalize.ActionRequest) policy.Classification {
			return t.ClassifyToolName(req.ToolName)
		},
		Resolve:       resolveToolCall,
		Render:        renderPermission,
		PermissionKey: "permission",
		ExitCode: func(p policy.Permission) int {
			if p == policy.PermissionDeny {
				return 2
			}
			return 0
		},
		OnMalformed: policy.Decision{
			Permission:  policy.PermissionDeny,
			UserMessage: "Hook could not parse input.",
		},
		OnFailure: policy.Decision{
			Permission:  policy.PermissionDeny,
			UserMessage: "Hook failed.",
		},
	}
}

func resolveToolCall(req normalize.ActionRequest, c policy.Classification) policy.Decision {
	if !c.Has(policy.FactWriteTool) {
		return policy.Allow()
	}
	return policy.Decision{
		Permission: policy.PermissionAsk,
		UserMessage: fmt.Sprintf(
			"MCP tool '%s' can write or change data. Confirm you want to run it.", req.DisplayName),
		AgentMessage: fmt.Sprintf(
			"The tool '%s' was flagged as a write operation. User authorization is required. "+
				"Summarize the intended action and ask the user to confirm.", req.DisplayName),
	}
}
