// Package ansible extracts a normalized model of a configuration-management
// repository: inventories, playbooks and reusable roles.
//
// The package is the parsing/resolution core of playgraph. It knows nothing
// about rendering; it produces a read-only [Model] that the diagram emitters
// consume. Acquisition of the working copy (cloning, checkout) and discovery
// of candidate file paths are the caller's responsibility.
//
// # Architecture
//
// Parsing proceeds in four stages, orchestrated by [Assembler]:
//
//  1. Inventories: YAML or INI files flattened into group→hosts mappings
//  2. Playbooks: a work queue over playbook paths, following import_playbook
//  3. Task trees: recursive extraction into tagged [TaskNode] variants
//  4. Roles: transitive dependency closure with cycle protection
//
// Malformed YAML and missing caller-supplied paths are fatal; missing role
// files, empty includes and similar soft misses are collected as warnings by
// the [Diagnostics] sink and never abort a run.
package ansible

// TaskKind discriminates the TaskNode variants.
type TaskKind string

// Task node kinds.
const (
	TaskPlain   TaskKind = "task"
	TaskBlock   TaskKind = "block"
	TaskRole    TaskKind = "role"
	TaskInclude TaskKind = "include"
)

// Default display names for unnamed entries.
const (
	DefaultTaskName    = "unnamed_task"
	DefaultHandlerName = "unnamed_handler"
)

// TaskNode is one node of the recursive task tree. Kind selects the variant;
// the variant-specific fields are only populated for the matching kind.
type TaskNode struct {
	Kind TaskKind
	Name string

	// Metadata, normalized to list form where Ansible allows scalars.
	When       []string
	Tags       []string
	Become     bool
	BecomeUser string
	Notify     []string

	// Block: children in block ++ rescue ++ always order.
	Children []*TaskNode

	// Role reference (include_role / import_role).
	RoleName string

	// Include (include_tasks / import_tasks).
	IncludeFile string
	Included    []*TaskNode
}

// Play is one host-targeted entry of a playbook.
type Play struct {
	Hosts      string
	Roles      []string
	Tasks      []*TaskNode // pre_tasks ++ tasks ++ post_tasks
	Handlers   []string
	Tags       []string
	Become     bool
	BecomeUser string
}

// Playbook is a parsed playbook file. Path is its identity; Imports holds
// the resolved import_playbook targets in declaration order.
type Playbook struct {
	Path    string
	Name    string
	Plays   []*Play
	Imports []string
}

// Group is a named inventory group with its directly declared hosts.
// Groups referenced only as containers exist with an empty host list.
type Group struct {
	Name  string
	Hosts []string
}

// Model is the aggregate repository model. It is built once by an
// [Assembler] and must be treated as immutable afterwards.
//
// Maps are accompanied by order slices so that consumers can iterate
// deterministically; identical inputs always produce an identically
// ordered model.
type Model struct {
	Groups     map[string]*Group
	GroupOrder []string

	Playbooks     map[string]*Playbook
	PlaybookOrder []string

	Roles     map[string]bool
	RoleOrder []string

	RoleTasks map[string][]*TaskNode
	RoleDeps  map[string][]string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		Groups:    make(map[string]*Group),
		Playbooks: make(map[string]*Playbook),
		Roles:     make(map[string]bool),
		RoleTasks: make(map[string][]*TaskNode),
		RoleDeps:  make(map[string][]string),
	}
}

// HasRole reports whether the role name is known to the model.
func (m *Model) HasRole(name string) bool {
	return m.Roles[name]
}

// addRole records a role name, preserving first-seen order.
func (m *Model) addRole(name string) {
	if name == "" || m.Roles[name] {
		return
	}
	m.Roles[name] = true
	m.RoleOrder = append(m.RoleOrder, name)
}

// setGroup records a group, overwriting the hosts of a previously declared
// group with the same name while keeping its original position.
func (m *Model) setGroup(name string, hosts []string) {
	if _, ok := m.Groups[name]; !ok {
		m.GroupOrder = append(m.GroupOrder, name)
	}
	m.Groups[name] = &Group{Name: name, Hosts: hosts}
}

// TaskCount returns the total number of task nodes in the model, including
// nested block children and include expansions.
func (m *Model) TaskCount() int {
	count := 0
	var walk func(nodes []*TaskNode)
	walk = func(nodes []*TaskNode) {
		for _, n := range nodes {
			count++
			walk(n.Children)
			walk(n.Included)
		}
	}
	for _, pb := range m.Playbooks {
		for _, play := range pb.Plays {
			walk(play.Tasks)
		}
	}
	for _, tasks := range m.RoleTasks {
		walk(tasks)
	}
	return count
}
