package ansible

import "fmt"

// Parser parses inventory, playbook and role files beneath a repository root.
//
// A Parser is cheap to create and owns no open handles; every file is read,
// parsed and closed within a single call. Role directory lookups are cached
// per role name, since overlapping plays frequently reference the same roles.
type Parser struct {
	root  string
	diags *Diagnostics

	roleDirCache map[string][]string
}

// NewParser creates a parser for the repository rooted at root. The
// diagnostics sink must not be nil.
func NewParser(root string, diags *Diagnostics) *Parser {
	return &Parser{
		root:         root,
		diags:        diags,
		roleDirCache: make(map[string][]string),
	}
}

// stringify renders a YAML scalar value as a string.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// toStringList normalizes a YAML value to list form: a scalar becomes a
// single-element list, a sequence is stringified element-wise, anything
// else yields nil.
func toStringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(val)}
	}
}

// asList returns a YAML value as a sequence, treating nil and non-sequence
// values as empty.
func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return nil
}

// truthy reports whether a YAML value is truthy: false, nil, zero and the
// empty string/sequence/mapping are falsy, everything else is truthy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// nameFromRef extracts a role name from a role reference, which is either a
// bare string or a mapping carrying "role" or "name".
func nameFromRef(v any) string {
	if m, ok := v.(map[string]any); ok {
		if name := stringify(m["role"]); name != "" {
			return name
		}
		return stringify(m["name"])
	}
	return stringify(v)
}
