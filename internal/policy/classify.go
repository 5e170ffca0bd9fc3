package policy

import "strings"

// ClassifyToolName derives FactWriteTool for a canonical tool name
// (lower-cased, / and - folded to _).
func (t *Tables) ClassifyToolName(canonical string) Classification {
	c := NewClassification()
	evidence, ok := t.WriteTools.Match(canonical)
	c.Set(FactWriteTool, ok, evidence)
	return c
}

// ClassifyWrite derives FactSensitivePath and FactSecretContent for a file
// write. Both are always computed so diagnostics show the full picture.
func (t *Tables) ClassifyWrite(path, content string) Classification {
	c := NewClassification()

	evidence, ok := t.SensitivePaths.Match(canonicalPath(path))
	c.Set(FactSensitivePath, ok, evidence)

	evidence, ok = t.matchSecret(content)
	c.Set(FactSecretContent, ok, evidence)

	return c
}

// HasSecretContent reports whether text carries a secret indicator.
// Blank text never does.
func (t *Tables) HasSecretContent(text string) bool {
	_, ok := t.matchSecret(text)
	return ok
}

// IsSensitivePath reports whether path points at a credential-bearing location.
func (t *Tables) IsSensitivePath(path string) bool {
	_, ok := t.SensitivePaths.Match(canonicalPath(path))
	return ok
}

func (t *Tables) matchSecret(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return t.SecretContent.Match(text)
}

func canonicalPath(path string) string {
	return strings.ReplaceAll(strings.ToLower(path), `\`, "/")
}
