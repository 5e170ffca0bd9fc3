package guard

import (
	"github.com/gzhole/hookguard/internal/normalize"
	"github.com/gzhole/hookguard/internal/policy"
)

const secretWriteReason = "Writing secrets to a file requires explicit user authorization. " +
	"Confirm you want to persist this sensitive data, then retry."

// decisionResponse is the document expected by preToolUse (Write) hooks.
type decisionResponse struct {
	Decision policy.Permission `json:"decision"`
	Reason   string            `json:"reason,omitempty"`
}

// FileWrite denies writes that put secret-looking content into a
// credential-bearing path. It never asks.
//
// The guard fails open: unreadable input and internal errors allow the
// write with exit code 0.
func FileWrite() *Guard {
	return &Guard{
		Name:      "secret-write",
		Normalize: normalize.FileWrite,
		Classify: func(t *policy.Tables, req normalize.ActionRequest) policy.Classification {
			return t.ClassifyWrite(req.Path, req.Content)
		},
		Resolve: resolveFileWrite,
		Render: func(d policy.Decision) any {
			// The deny reason is addressed to the agent that attempted the write.
			return decisionResponse{Decision: d.Permission, Reason: d.AgentMessage}
		},
		PermissionKey: "decision",
		ExitCode: func(p policy.Permission) int {
			if p == policy.PermissionDeny {
				return 2
			}
			return 0
		},
		OnMalformed: policy.Allow(),
		OnFailure:   policy.Allow(),
	}
}

func resolveFileWrite(_ normalize.ActionRequest, c policy.Classification) policy.Decision {
	if c.Has(policy.FactSensitivePath) && c.Has(policy.FactSecretContent) {
		return policy.Decision{
			Permission:   policy.PermissionDeny,
			AgentMessage: secretWriteReason,
		}
	}
	return policy.Allow()
}
