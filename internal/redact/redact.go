package redact

import (
	"regexp"
	"unicode/utf8"
)

// Placeholder replaces every secret-looking span.
const Placeholder = "[REDACTED]"

// DefaultMaxLen bounds how much of a payload a diagnostic line may carry.
const DefaultMaxLen = 200

type replacement struct {
	re   *regexp.Regexp
	with string
}

var sensitivePatterns = []replacement{
	// Private key blocks, including the body up to the END marker when present.
	{regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----(?s:.*?-----END [A-Z ]*PRIVATE KEY-----)?`), Placeholder},

	// Vendor token shapes
	{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), Placeholder},
	{regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`), Placeholder},
	{regexp.MustCompile(`xox[baprs]-[0-9A-Za-z-]{10,}`), Placeholder},
	{regexp.MustCompile(`[sr]k_live_[0-9a-zA-Z]{24}`), Placeholder},

	// Header-style credentials
	{regexp.MustCompile(`(?i)(authorization\s*:\s*)[^\r\n]+`), "${1}" + Placeholder},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer " + Placeholder},

	// key=value and key: value assignments keep the key
	{regexp.MustCompile(`(?i)([A-Za-z0-9_]*(?:password|passwd|pwd|secret|token|api_?key|access_key)[A-Za-z0-9_]*\s*[=:]\s*)['"]?[^\s'"]+['"]?`), "${1}" + Placeholder},

	// Basic auth in URLs
	{regexp.MustCompile(`(https?://)[^:/\s@]+:[^@/\s]+@`), "${1}" + Placeholder + "@"},
}

// Redact replaces secret-looking spans in input.
func Redact(input string) string {
	result := input
	for _, p := range sensitivePatterns {
		result = p.re.ReplaceAllString(result, p.with)
	}
	return result
}

// Clip shortens s to at most max bytes on a rune boundary and marks the cut.
func Clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// ForLog redacts and clips a value destined for a diagnostic log line.
func ForLog(s string) string {
	return Clip(Redact(s), DefaultMaxLen)
}
