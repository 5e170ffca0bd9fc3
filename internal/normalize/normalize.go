// Package normalize turns a raw hook payload into a canonical ActionRequest.
// Missing or wrongly typed fields are not errors: they produce an empty
// request, which guards treat as "nothing to evaluate". Only a payload that
// is not a JSON object at all is rejected, with ErrMalformed.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks input that is not a structured hook payload.
var ErrMalformed = errors.New("malformed hook payload")

// Kind tags the variant of an ActionRequest.
type Kind int

const (
	KindToolCall Kind = iota + 1
	KindFileWrite
	KindShellCommand
)

func (k Kind) String() string {
	switch k {
	case KindToolCall:
		return "tool-call"
	case KindFileWrite:
		return "file-write"
	case KindShellCommand:
		return "shell-command"
	default:
		return "unknown"
	}
}

// ActionRequest is the canonical form of one proposed action. Only the fields
// of its Kind are populated.
type ActionRequest struct {
	Kind Kind

	// KindToolCall
	ToolName    string // lower-cased, / and - folded to _
	DisplayName string // lower-cased and trimmed, as shown to the user

	// KindFileWrite
	Path    string
	Content string

	// KindShellCommand
	Command string
}

// Empty reports whether the request carries nothing to classify.
func (r ActionRequest) Empty() bool {
	switch r.Kind {
	case KindToolCall:
		return r.ToolName == ""
	case KindFileWrite:
		return r.Path == ""
	case KindShellCommand:
		return r.Command == ""
	default:
		return true
	}
}

// Subject is the field a person reads to recognize the action: the tool name,
// the target path or the command line.
func (r ActionRequest) Subject() string {
	switch r.Kind {
	case KindToolCall:
		return r.DisplayName
	case KindFileWrite:
		return r.Path
	case KindShellCommand:
		return r.Command
	default:
		return ""
	}
}

// ToolCall normalizes {"tool_name": "..."}.
func ToolCall(payload []byte) (ActionRequest, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return ActionRequest{}, err
	}

	display := strings.ToLower(strings.TrimSpace(stringField(fields, "tool_name")))
	return ActionRequest{
		Kind:        KindToolCall,
		ToolName:    CanonicalToolName(display),
		DisplayName: display,
	}, nil
}

// CanonicalToolName folds the separators hosts use in tool identifiers, so
// "memory/store", "memory-store" and "Memory_Store" compare equal.
func CanonicalToolName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("/", "_", "-", "_").Replace(name)
}

// FileWrite normalizes {"tool_input": {...} | "<json>"}. The target path comes
// from "path" or "file_path"; content from "edits", "new_string" or "content",
// where edits may be a string or a list of {"new_string": ...} records.
func FileWrite(payload []byte) (ActionRequest, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return ActionRequest{}, err
	}

	req := ActionRequest{Kind: KindFileWrite}

	input := toolInput(fields["tool_input"])
	if input == nil {
		return req, nil
	}

	req.Path = firstString(input, "path", "file_path")
	req.Content = editContent(input)
	return req, nil
}

// ShellCommand normalizes {"command": "..."}.
func ShellCommand(payload []byte) (ActionRequest, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return ActionRequest{}, err
	}
	return ActionRequest{
		Kind:    KindShellCommand,
		Command: stringField(fields, "command"),
	}, nil
}

func decodeObject(payload []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fields, nil
}

// toolInput accepts an object, or a string holding an object. Anything else,
// including a string that does not parse, yields nil.
func toolInput(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &obj); err != nil {
		return nil
	}
	return obj
}

// editContent reads the first set content source. A set source of an
// unsupported shape yields no content; later sources are not consulted.
func editContent(input map[string]any) string {
	for _, key := range []string{"edits", "new_string", "content"} {
		raw := input[key]
		if !isSet(raw) {
			continue
		}
		switch v := raw.(type) {
		case string:
			return v
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				record, ok := item.(map[string]any)
				if !ok {
					continue
				}
				text, _ := record["new_string"].(string)
				parts = append(parts, text)
			}
			return strings.Join(parts, " ")
		}
		return ""
	}
	return ""
}

// isSet reports whether a decoded JSON value carries anything: null, false,
// 0, "", [] and {} do not.
func isSet(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstString(input map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := input[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
