package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleSet is one classification axis expressed as data. A value matches when
// it equals an Exact entry, contains a Contains entry, or matches a Patterns
// regular expression. Patterns are always case-insensitive.
type RuleSet struct {
	Description string   `yaml:"description,omitempty"`
	Exact       []string `yaml:"exact,omitempty"`
	Contains    []string `yaml:"contains,omitempty"`
	Patterns    []string `yaml:"patterns,omitempty"`

	exact    map[string]struct{}
	compiled []*regexp.Regexp
}

// Compile prepares the set for matching. It must be called before Match.
func (r *RuleSet) Compile() error {
	r.exact = make(map[string]struct{}, len(r.Exact))
	for _, e := range r.Exact {
		r.exact[e] = struct{}{}
	}

	r.compiled = make([]*regexp.Regexp, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		r.compiled = append(r.compiled, re)
	}
	return nil
}

// Match reports whether value hits the set and which entry it hit, in the
// form "exact:<entry>", "contains:<entry>" or "pattern:<entry>". Exact
// entries are checked first, then substrings, then patterns.
func (r *RuleSet) Match(value string) (string, bool) {
	if _, ok := r.exact[value]; ok {
		return "exact:" + value, true
	}
	for _, sub := range r.Contains {
		if sub != "" && strings.Contains(value, sub) {
			return "contains:" + sub, true
		}
	}
	for i, re := range r.compiled {
		if re.MatchString(value) {
			return "pattern:" + r.Patterns[i], true
		}
	}
	return "", false
}

// Size is the number of entries across all matcher kinds.
func (r *RuleSet) Size() int {
	return len(r.Exact) + len(r.Contains) + len(r.Patterns)
}

// Pattern joins the set's regular expressions into a single alternation,
// for hosts that take one matcher string.
func (r *RuleSet) Pattern() string {
	return strings.Join(r.Patterns, "|")
}

// merge unions other into r, keeping r's order and appending new entries.
func (r *RuleSet) merge(other RuleSet) {
	if r.Description == "" {
		r.Description = other.Description
	}
	r.Exact = union(r.Exact, other.Exact)
	r.Contains = union(r.Contains, other.Contains)
	r.Patterns = union(r.Patterns, other.Patterns)
}

func (r RuleSet) clone() RuleSet {
	return RuleSet{
		Description: r.Description,
		Exact:       append([]string(nil), r.Exact...),
		Contains:    append([]string(nil), r.Contains...),
		Patterns:    append([]string(nil), r.Patterns...),
	}
}

func union(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			seen[s] = true
			base = append(base, s)
		}
	}
	return base
}
