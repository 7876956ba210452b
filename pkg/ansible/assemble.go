package ansible

import "os"

// Assembler orchestrates the parsers over a set of input paths and produces
// one aggregate, read-only Model.
type Assembler struct {
	parser *Parser
}

// NewAssembler creates an assembler for the repository rooted at root,
// reporting soft misses to the given diagnostics sink.
func NewAssembler(root string, diags *Diagnostics) *Assembler {
	return &Assembler{parser: NewParser(root, diags)}
}

// Parser exposes the underlying parser, mainly for tests.
func (a *Assembler) Parser() *Parser {
	return a.parser
}

// Assemble parses all inventories and playbooks and resolves the transitive
// role closure. Inventories are merged in argument order, later paths
// overwriting same-named groups. Playbooks are processed through a work
// queue that follows import_playbook targets existing on disk; each distinct
// path is parsed exactly once, no matter how often it is imported.
//
// Malformed YAML or a missing caller-supplied path aborts assembly with a
// structured error; everything else degrades to warnings.
func (a *Assembler) Assemble(inventories, playbooks []string) (*Model, error) {
	m := NewModel()

	for _, path := range inventories {
		inv, err := a.parser.ParseInventory(path)
		if err != nil {
			return nil, err
		}
		for _, name := range inv.Order {
			m.setGroup(name, inv.Groups[name])
		}
	}

	parsed := make(map[string]bool)
	pending := append([]string(nil), playbooks...)
	for len(pending) > 0 {
		path := pending[0]
		pending = pending[1:]
		if parsed[path] {
			continue
		}
		parsed[path] = true

		pb, err := a.parser.ParsePlaybook(path)
		if err != nil {
			return nil, err
		}
		m.Playbooks[path] = pb
		m.PlaybookOrder = append(m.PlaybookOrder, path)

		for _, play := range pb.Plays {
			for _, role := range play.Roles {
				m.addRole(role)
			}
			collectRoles(play.Tasks, m)
		}

		for _, imp := range pb.Imports {
			if parsed[imp] {
				continue
			}
			if _, err := os.Stat(imp); err == nil {
				pending = append(pending, imp)
			}
		}
	}

	a.parser.resolveRoles(m)
	return m, nil
}

// collectRoles gathers role names from RoleRef nodes anywhere in a task
// tree, descending into block children and include expansions.
func collectRoles(tasks []*TaskNode, m *Model) {
	for _, t := range tasks {
		switch t.Kind {
		case TaskRole:
			m.addRole(t.RoleName)
		case TaskBlock:
			collectRoles(t.Children, m)
		case TaskInclude:
			collectRoles(t.Included, m)
		}
	}
}
