package policy

// Permission is the verdict a guard hands back to the host.
type Permission string

const (
	PermissionAllow Permission = "allow"
	PermissionAsk   Permission = "ask"
	PermissionDeny  Permission = "deny"
)

// Decision is the terminal output of one guard invocation.
type Decision struct {
	Permission   Permission
	UserMessage  string
	AgentMessage string
}

func Allow() Decision { return Decision{Permission: PermissionAllow} }

// Fact names one boolean derived by classification.
type Fact string

const (
	FactWriteTool     Fact = "is_write_tool"
	FactSensitivePath Fact = "is_sensitive_path"
	FactSecretContent Fact = "has_secret_content"
)

// Classification holds the facts derived for one request. Evidence records
// which rule entry made each true fact true; it is diagnostic only.
type Classification struct {
	Facts    map[Fact]bool
	Evidence map[Fact]string
}

func NewClassification() Classification {
	return Classification{
		Facts:    map[Fact]bool{},
		Evidence: map[Fact]string{},
	}
}

// Set records a fact and, when it holds, the entry that matched.
func (c Classification) Set(f Fact, matched bool, evidence string) {
	c.Facts[f] = matched
	if matched {
		c.Evidence[f] = evidence
	}
}

func (c Classification) Has(f Fact) bool {
	return c.Facts[f]
}
