package ansible

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExtractTask turns one raw task declaration into a typed TaskNode.
//
// Dispatch is performed once per call, in fixed priority order:
//
//  1. "block" present → TaskBlock, children = block ++ rescue ++ always
//  2. "include_role"/"import_role" present → TaskRole
//  3. "include_tasks"/"import_tasks" present → TaskInclude, with the
//     referenced file loaded and extracted recursively
//  4. otherwise → TaskPlain
//
// basePath is the file the declaration came from; include targets resolve
// relative to its directory first, then relative to the repository root.
func (p *Parser) ExtractTask(raw map[string]any, basePath string) *TaskNode {
	node := &TaskNode{Kind: TaskPlain, Name: DefaultTaskName}
	if name := stringify(raw["name"]); name != "" {
		node.Name = name
	}

	if when, ok := raw["when"]; ok && when != nil {
		node.When = toStringList(when)
	}
	if tags, ok := raw["tags"]; ok && tags != nil {
		node.Tags = toStringList(tags)
	}
	if truthy(raw["become"]) {
		node.Become = true
		node.BecomeUser = stringify(raw["become_user"])
	}
	if notify := raw["notify"]; truthy(notify) {
		node.Notify = toStringList(notify)
	}

	if _, ok := raw["block"]; ok {
		node.Kind = TaskBlock
		for _, section := range []string{"block", "rescue", "always"} {
			for _, t := range asList(raw[section]) {
				if m, ok := t.(map[string]any); ok {
					node.Children = append(node.Children, p.ExtractTask(m, basePath))
				}
			}
		}
		return node
	}

	roleRef := raw["include_role"]
	if roleRef == nil {
		roleRef = raw["import_role"]
	}
	if truthy(roleRef) {
		node.Kind = TaskRole
		node.RoleName = nameFromRef(roleRef)
		return node
	}

	includeRef := raw["include_tasks"]
	if includeRef == nil {
		includeRef = raw["import_tasks"]
	}
	if truthy(includeRef) {
		node.Kind = TaskInclude
		if m, ok := includeRef.(map[string]any); ok {
			node.IncludeFile = stringify(m["file"])
		} else {
			node.IncludeFile = stringify(includeRef)
		}
		for _, t := range p.loadIncludedTasks(node.IncludeFile, basePath) {
			if m, ok := t.(map[string]any); ok {
				node.Included = append(node.Included, p.ExtractTask(m, basePath))
			}
		}
		return node
	}

	return node
}

// loadIncludedTasks resolves and loads an included task file. Candidates are
// tried in order: relative to the including file's directory, then relative
// to the repository root. The first existing file that parses to a non-empty
// sequence wins; an unresolvable include yields nil and a warning.
func (p *Parser) loadIncludedTasks(file, basePath string) []any {
	if file == "" {
		return nil
	}

	candidates := []string{
		filepath.Join(filepath.Dir(basePath), file),
		filepath.Join(p.root, file),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		tasks, ok := p.loadTaskList(path)
		if ok {
			return tasks
		}
	}

	p.diags.Warnf(basePath, "could not load included task file %q", file)
	return nil
}

// loadTaskList reads a YAML file expected to contain a non-empty sequence of
// task mappings. Unreadable, malformed, empty or non-sequence content is a
// soft miss: a warning is recorded and ok is false.
func (p *Parser) loadTaskList(path string) ([]any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.diags.Warnf(path, "could not read task file: %v", err)
		return nil, false
	}

	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		p.diags.Warnf(path, "could not parse task file: %v", err)
		return nil, false
	}

	tasks := asList(content)
	if len(tasks) == 0 {
		return nil, false
	}
	return tasks, true
}
