package ansible

import (
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Role file lookups follow the fixed convention
// <repoRoot>/**/roles/<name>/{tasks,meta}/main.{yml,yaml}. The candidate
// paths are built explicitly and tried in sequence rather than delegating to
// a recursive glob, so the two supported extensions and the nesting depth
// stay exact. The ".yml" extension is preferred over ".yaml" across all
// matching roles directories.

// roleExtensions is the ordered list of supported file extensions.
var roleExtensions = []string{".yml", ".yaml"}

// roleDirs returns every "roles/<name>" directory beneath the repository
// root in lexical walk order. Results are cached per role name; the same
// role is commonly referenced from several plays.
func (p *Parser) roleDirs(name string) []string {
	if dirs, ok := p.roleDirCache[name]; ok {
		return dirs
	}

	var dirs []string
	_ = filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "roles" {
			candidate := filepath.Join(path, name)
			if fi, statErr := os.Stat(candidate); statErr == nil && fi.IsDir() {
				dirs = append(dirs, candidate)
			}
		}
		return nil
	})

	p.roleDirCache[name] = dirs
	return dirs
}

// FindRoleTasks locates and extracts the task list of a role. The first
// candidate file whose content is a non-empty sequence wins; a role without
// a loadable task file yields nil (soft miss, never fatal).
func (p *Parser) FindRoleTasks(name string) []*TaskNode {
	for _, ext := range roleExtensions {
		for _, dir := range p.roleDirs(name) {
			path := filepath.Join(dir, "tasks", "main"+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			raw, ok := p.loadTaskList(path)
			if !ok {
				continue
			}
			tasks := make([]*TaskNode, 0, len(raw))
			for _, t := range raw {
				if m, ok := t.(map[string]any); ok {
					tasks = append(tasks, p.ExtractTask(m, path))
				}
			}
			return tasks
		}
	}
	return nil
}

// FindRoleDeps reads a role's dependency list from its meta/main file.
// Entries are bare names or mappings carrying "role"/"name". Missing or
// malformed meta yields nil (soft miss, never fatal).
func (p *Parser) FindRoleDeps(name string) []string {
	for _, ext := range roleExtensions {
		for _, dir := range p.roleDirs(name) {
			path := filepath.Join(dir, "meta", "main"+ext)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}

			var meta map[string]any
			if err := yaml.Unmarshal(data, &meta); err != nil {
				p.diags.Warnf(path, "could not parse role meta: %v", err)
				continue
			}
			if len(meta) == 0 {
				continue
			}

			var deps []string
			for _, dep := range asList(meta["dependencies"]) {
				if depName := nameFromRef(dep); depName != "" {
					deps = append(deps, depName)
				}
			}
			return deps
		}
	}
	return nil
}

// resolveRoles loads tasks and dependencies for every role in the model and
// expands the role set to the transitive closure of dependencies.
//
// The loop maintains the invariant that a role is resolved at most once: the
// processed set only grows, and a role already marked processed is never
// revisited even if rediscovered through a dependency cycle.
func (p *Parser) resolveRoles(m *Model) {
	processed := make(map[string]bool)
	for {
		var todo []string
		for _, name := range m.RoleOrder {
			if !processed[name] {
				todo = append(todo, name)
			}
		}
		if len(todo) == 0 {
			return
		}

		for _, name := range todo {
			processed[name] = true
			m.RoleTasks[name] = p.FindRoleTasks(name)
			deps := p.FindRoleDeps(name)
			if len(deps) > 0 {
				m.RoleDeps[name] = deps
				for _, dep := range deps {
					m.addRole(dep)
				}
			}
		}
	}
}
