// Package mermaid renders a repository model as Mermaid flowchart text.
//
// The emitter is deterministic: identical models always produce byte
// identical output. Node identifiers are derived from display names through
// a stable sanitization scheme, and every emitted node is recorded in a
// per-category bucket used to assign one style class per populated category.
//
// The document is built in three fixed sections - Inventory, Playbooks,
// Roles - followed by the cross-section connection list, the style class
// definitions and the class assignments.
package mermaid

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/playgraph/playgraph/pkg/ansible"
	"github.com/playgraph/playgraph/pkg/errors"
)

// Layout is the flowchart layout direction.
type Layout string

// Supported layout directions.
const (
	LayoutLR Layout = "LR"
	LayoutTB Layout = "TB"
	LayoutRL Layout = "RL"
	LayoutBT Layout = "BT"
)

// DefaultLayout is used when no direction is requested.
const DefaultLayout = LayoutLR

// ParseLayout validates a layout-direction token.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "":
		return DefaultLayout, nil
	case LayoutLR, LayoutTB, LayoutRL, LayoutBT:
		return Layout(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidLayout, "invalid layout: %q (must be one of: LR, TB, RL, BT)", s)
}

// styleDefs is the fixed block of style-class definitions, one per node
// category. The shapes and colors stay stable across runs per category.
var styleDefs = []string{
	"classDef groupClass fill:#e1f5fe,stroke:#01579b,stroke-width:2px",
	"classDef hostClass fill:#fff3e0,stroke:#e65100,stroke-width:1px",
	"classDef playbookClass fill:#e8f5e9,stroke:#1b5e20,stroke-width:3px",
	"classDef roleClass fill:#f3e5f5,stroke:#4a148c,stroke-width:2px",
	"classDef taskClass fill:#fafafa,stroke:#616161,stroke-width:1px",
	"classDef handlerClass fill:#fff8e1,stroke:#ff6f00,stroke-width:1px,stroke-dasharray: 5 5",
	"classDef includeClass fill:#e0f2f1,stroke:#00695c,stroke-width:1px",
	"classDef tagClass fill:#e8eaf6,stroke:#283593,stroke-width:1px,stroke-dasharray: 3 3",
	"classDef becomeClass fill:#fce4ec,stroke:#b71c1c,stroke-width:1px,stroke-dasharray: 3 3",
}

var (
	sanitizeRe      = regexp.MustCompile(`[^\w\-]`)
	underscoreRunRe = regexp.MustCompile(`__+`)
	leadingDigitRe  = regexp.MustCompile(`^\d`)
)

// Sanitize converts an arbitrary name into a stable Mermaid node identifier.
// Identical inputs always sanitize identically; edges depend on this.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	text = sanitizeRe.ReplaceAllString(text, "_")
	text = underscoreRunRe.ReplaceAllString(text, "_")
	if leadingDigitRe.MatchString(text) {
		text = "id_" + text
	}
	return text
}

// EscapeLabel replaces double quotes so a label can be embedded in a quoted
// Mermaid node label.
func EscapeLabel(text string) string {
	return strings.ReplaceAll(text, `"`, "'")
}

// idSet is an insertion-ordered set of node identifiers.
type idSet struct {
	seen  map[string]bool
	order []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]bool)}
}

// add records id and reports whether it was newly added.
func (s *idSet) add(id string) bool {
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	s.order = append(s.order, id)
	return true
}

func (s *idSet) empty() bool {
	return len(s.order) == 0
}

// buckets collects emitted node ids per category for class assignment.
type buckets struct {
	groups    *idSet
	hosts     *idSet
	playbooks *idSet
	roles     *idSet
	tasks     *idSet
	handlers  *idSet
	includes  *idSet
	tags      *idSet
	becomes   *idSet
}

func newBuckets() *buckets {
	return &buckets{
		groups:    newIDSet(),
		hosts:     newIDSet(),
		playbooks: newIDSet(),
		roles:     newIDSet(),
		tasks:     newIDSet(),
		handlers:  newIDSet(),
		includes:  newIDSet(),
		tags:      newIDSet(),
		becomes:   newIDSet(),
	}
}

// generator holds the state of one emission run.
type generator struct {
	model       *ansible.Model
	buckets     *buckets
	connections []string
	roleLines   []string
	rolesDone   map[string]bool
	taskCounter int
}

// Generate renders the model as Mermaid flowchart text with the given
// layout direction. The model is treated as read-only.
func Generate(m *ansible.Model, layout Layout) string {
	g := &generator{
		model:     m,
		buckets:   newBuckets(),
		rolesDone: make(map[string]bool),
	}

	lines := []string{"graph " + string(layout)}
	lines = g.emitInventory(lines)
	lines = g.emitPlaybooks(lines)
	lines = g.emitRoles(lines)
	lines = append(lines, g.connections...)
	lines = append(lines, styleDefs...)
	lines = g.emitClasses(lines)

	return strings.Join(lines, "\n")
}

// emitInventory renders one container node per group, one leaf node per
// host and the group→host edges.
func (g *generator) emitInventory(lines []string) []string {
	lines = append(lines, `    subgraph inventory["Inventory"]`, "    direction TB")

	for _, name := range g.model.GroupOrder {
		group := g.model.Groups[name]
		groupID := Sanitize(name)
		g.buckets.groups.add(groupID)
		lines = append(lines, fmt.Sprintf(`        %s[["fa:fa-layer-group %s"]]`, groupID, EscapeLabel(name)))

		for _, host := range group.Hosts {
			hostID := Sanitize(host)
			g.buckets.hosts.add(hostID)
			lines = append(lines, fmt.Sprintf(`        %s(("fa:fa-server %s"))`, hostID, EscapeLabel(host)))
			lines = append(lines, fmt.Sprintf("        %s --- %s", groupID, hostID))
		}
	}

	return append(lines, "    end")
}

// emitPlaybooks renders one node per playbook with its play contents: runs
// edges from the target group, uses edges to listed roles, the full task
// tree, handler nodes and imports edges.
func (g *generator) emitPlaybooks(lines []string) []string {
	lines = append(lines, `    subgraph playbooks_section["Playbooks"]`, "    direction TB")

	for _, path := range g.model.PlaybookOrder {
		pb := g.model.Playbooks[path]
		pbID := Sanitize(pb.Name)
		g.buckets.playbooks.add(pbID)
		lines = append(lines, fmt.Sprintf(`        %s["fa:fa-book %s"]`, pbID, EscapeLabel(pb.Name)))

		for _, play := range pb.Plays {
			if play.Hosts != "" {
				g.connect(`    %s -->|"runs"| %s`, Sanitize(play.Hosts), pbID)
			}

			lines = g.addTagNode(lines, play.Tags, pbID)
			lines = g.addBecomeNode(lines, play.Become, play.BecomeUser, pbID)

			for _, role := range play.Roles {
				roleID := g.ensureRole(role)
				g.connect(`    %s ==>|"uses"| %s`, pbID, roleID)
			}

			for _, task := range play.Tasks {
				lines = g.processTask(lines, task, pbID)
			}

			for _, handler := range play.Handlers {
				lines = g.ensureHandler(lines, handler)
			}
		}

		for _, imp := range pb.Imports {
			impID := Sanitize(filepath.Base(imp))
			g.connect(`    %s -->|"imports"| %s`, pbID, impID)
		}
	}

	return append(lines, "    end")
}

// emitRoles renders the roles subgraph: every role node with its task tree
// (unless already emitted through a role reference) plus depends edges.
func (g *generator) emitRoles(lines []string) []string {
	for _, role := range g.model.RoleOrder {
		g.ensureRole(role)
	}
	for _, role := range g.model.RoleOrder {
		roleID := Sanitize("role_" + role)
		for _, dep := range g.model.RoleDeps[role] {
			g.connect(`    %s -->|"depends"| %s`, roleID, Sanitize("role_"+dep))
		}
	}

	lines = append(lines, `    subgraph roles_section["Roles"]`, "    direction TB")
	lines = append(lines, g.roleLines...)
	return append(lines, "    end")
}

// ensureRole guarantees the role node exists, emitting it and its task tree
// into the roles section on first reference only. Subsequent references -
// including the ones caused by dependency cycles - return the id without
// emitting anything, which also bounds the recursion.
//
// The role's lines are built in a local block and appended to roleLines in
// one step at the end: a task tree containing a role reference re-enters
// ensureRole, which appends the referenced role's block to roleLines while
// this call is still building its own.
func (g *generator) ensureRole(name string) string {
	roleID := Sanitize("role_" + name)
	g.buckets.roles.add(roleID)
	if g.rolesDone[name] {
		return roleID
	}
	g.rolesDone[name] = true

	block := []string{fmt.Sprintf(`        %s{"fa:fa-cube %s"}`, roleID, EscapeLabel(name))}
	for _, task := range g.model.RoleTasks[name] {
		block = g.processTask(block, task, roleID)
	}
	g.roleLines = append(g.roleLines, block...)
	return roleID
}

// ensureHandler emits a handler leaf node on first use and returns lines.
func (g *generator) ensureHandler(lines []string, name string) []string {
	handlerID := Sanitize("handler_" + name)
	if g.buckets.handlers.add(handlerID) {
		lines = append(lines, fmt.Sprintf(`        %s(["fa:fa-bell %s"])`, handlerID, EscapeLabel(name)))
	}
	return lines
}

// processTask renders one task node under parentID, dispatching on the
// task-node variant, and returns the extended line slice.
func (g *generator) processTask(lines []string, task *ansible.TaskNode, parentID string) []string {
	switch task.Kind {
	case ansible.TaskRole:
		if task.RoleName != "" {
			roleID := g.ensureRole(task.RoleName)
			g.connect("    %s ==> %s", parentID, roleID)
		}
		g.taskCounter++
		return lines

	case ansible.TaskInclude:
		base := filepath.Base(task.IncludeFile)
		includeID := Sanitize("include_" + base)
		g.buckets.includes.add(includeID)
		lines = append(lines, fmt.Sprintf(`        %s[/"%s"/]`, includeID, EscapeLabel(base)))
		lines = append(lines, fmt.Sprintf("        %s --> %s", parentID, includeID))
		for _, included := range task.Included {
			g.taskCounter++
			lines = g.processTask(lines, included, includeID)
		}
		g.taskCounter++
		return lines

	case ansible.TaskBlock:
		blockID := fmt.Sprintf("%s_block_%d", parentID, g.taskCounter)
		g.buckets.tasks.add(blockID)
		lines = append(lines, fmt.Sprintf(`        %s["%s"]`, blockID, g.taskLabel(task)))
		lines = append(lines, fmt.Sprintf("        %s --> %s", parentID, blockID))
		lines = g.addTagNode(lines, task.Tags, blockID)
		lines = g.addBecomeNode(lines, task.Become, task.BecomeUser, blockID)
		g.taskCounter++
		for _, child := range task.Children {
			lines = g.processTask(lines, child, blockID)
		}
		return lines
	}

	taskID := fmt.Sprintf("%s_task_%d", parentID, g.taskCounter)
	g.buckets.tasks.add(taskID)
	lines = append(lines, fmt.Sprintf(`        %s["%s"]`, taskID, g.taskLabel(task)))
	lines = append(lines, fmt.Sprintf("        %s --> %s", parentID, taskID))
	lines = g.addTagNode(lines, task.Tags, taskID)
	lines = g.addBecomeNode(lines, task.Become, task.BecomeUser, taskID)

	for _, handler := range task.Notify {
		handlerID := Sanitize("handler_" + handler)
		if g.buckets.handlers.add(handlerID) {
			lines = append(lines, fmt.Sprintf(`        %s(["fa:fa-bell %s"])`, handlerID, EscapeLabel(handler)))
		}
		g.connect(`    %s -.->|"notifies"| %s`, taskID, handlerID)
	}

	g.taskCounter++
	return lines
}

// taskLabel builds a task node label, appending a when annotation line if
// conditions are present.
func (g *generator) taskLabel(task *ansible.TaskNode) string {
	parts := []string{EscapeLabel(task.Name)}
	if len(task.When) > 0 {
		condition := strings.Join(task.When, " AND ")
		parts = append(parts, "fa:fa-question when: "+EscapeLabel(condition))
	}
	return strings.Join(parts, "<br/>")
}

// addTagNode emits a detached, dash-linked annotation node for tags.
func (g *generator) addTagNode(lines []string, tags []string, ownerID string) []string {
	if len(tags) == 0 {
		return lines
	}
	tagID := ownerID + "_tags"
	g.buckets.tags.add(tagID)
	label := EscapeLabel(strings.Join(tags, ", "))
	lines = append(lines, fmt.Sprintf(`        %s>"fa:fa-tags %s"]`, tagID, label))
	return append(lines, fmt.Sprintf("        %s -.- %s", ownerID, tagID))
}

// addBecomeNode emits a detached, dash-linked annotation node for privilege
// escalation. The user defaults to root.
func (g *generator) addBecomeNode(lines []string, become bool, user, ownerID string) []string {
	if !become {
		return lines
	}
	if user == "" {
		user = "root"
	}
	becomeID := ownerID + "_become"
	g.buckets.becomes.add(becomeID)
	lines = append(lines, fmt.Sprintf(`        %s(["fa:fa-key %s"])`, becomeID, EscapeLabel(user)))
	return append(lines, fmt.Sprintf("        %s -.- %s", ownerID, becomeID))
}

// connect records a cross-section edge emitted after the subgraph blocks.
func (g *generator) connect(format string, args ...any) {
	g.connections = append(g.connections, fmt.Sprintf(format, args...))
}

// emitClasses appends one class-assignment line per populated category, in
// fixed category order.
func (g *generator) emitClasses(lines []string) []string {
	assignments := []struct {
		set   *idSet
		class string
	}{
		{g.buckets.groups, "groupClass"},
		{g.buckets.hosts, "hostClass"},
		{g.buckets.playbooks, "playbookClass"},
		{g.buckets.roles, "roleClass"},
		{g.buckets.tasks, "taskClass"},
		{g.buckets.handlers, "handlerClass"},
		{g.buckets.includes, "includeClass"},
		{g.buckets.tags, "tagClass"},
		{g.buckets.becomes, "becomeClass"},
	}

	for _, a := range assignments {
		if a.set.empty() {
			continue
		}
		lines = append(lines, fmt.Sprintf("    class %s %s", strings.Join(a.set.order, ","), a.class))
	}
	return lines
}
