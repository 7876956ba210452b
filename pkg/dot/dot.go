// Package dot renders a repository model as a Graphviz node-link overview.
//
// Unlike the Mermaid renderer, which draws the full task trees, the DOT
// overview is intentionally compact: inventory groups, playbooks and roles
// with their structural edges (runs, uses, imports, depends). It exists for
// the SVG output format, where a full task tree becomes unreadable.
package dot

import (
	"bytes"
	"fmt"

	"github.com/playgraph/playgraph/pkg/ansible"
	"github.com/playgraph/playgraph/pkg/mermaid"
)

// ToDOT converts a repository model to Graphviz DOT format. rankdir follows
// the same layout direction values as the Mermaid renderer (LR, TB, RL, BT).
// Output is deterministic: nodes and edges follow the model's insertion
// order.
func ToDOT(m *ansible.Model, rankdir string) string {
	if rankdir == "" {
		rankdir = string(mermaid.DefaultLayout)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph ansible {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	writeGroups(&buf, m)
	writePlaybooks(&buf, m)
	writeRoles(&buf, m)

	buf.WriteString("}\n")
	return buf.String()
}

func writeGroups(buf *bytes.Buffer, m *ansible.Model) {
	for _, name := range m.GroupOrder {
		group := m.Groups[name]
		id := "group_" + mermaid.Sanitize(name)
		fmt.Fprintf(buf, "  %q [label=%q, fillcolor=%q];\n", id, name, "#e3f2fd")
		for _, host := range group.Hosts {
			hostID := "host_" + mermaid.Sanitize(host)
			fmt.Fprintf(buf, "  %q [label=%q, shape=ellipse, fillcolor=%q];\n", hostID, host, "#e8f5e9")
			fmt.Fprintf(buf, "  %q -> %q [style=dashed, arrowhead=none];\n", id, hostID)
		}
	}
	buf.WriteString("\n")
}

func writePlaybooks(buf *bytes.Buffer, m *ansible.Model) {
	for _, path := range m.PlaybookOrder {
		pb := m.Playbooks[path]
		id := "pb_" + mermaid.Sanitize(pb.Name)
		fmt.Fprintf(buf, "  %q [label=%q, fillcolor=%q];\n", id, pb.Name, "#fff3e0")

		for _, play := range pb.Plays {
			if play.Hosts != "" {
				hosts := mermaid.Sanitize(play.Hosts)
				if _, ok := m.Groups[play.Hosts]; ok {
					fmt.Fprintf(buf, "  %q -> %q [label=\"runs\"];\n", "group_"+hosts, id)
				}
			}
			for _, role := range play.Roles {
				fmt.Fprintf(buf, "  %q -> %q [label=\"uses\"];\n", id, "role_"+mermaid.Sanitize(role))
			}
		}

		for _, imp := range pb.Imports {
			if target, ok := m.Playbooks[imp]; ok {
				fmt.Fprintf(buf, "  %q -> %q [label=\"imports\", style=dashed];\n",
					id, "pb_"+mermaid.Sanitize(target.Name))
			}
		}
	}
	buf.WriteString("\n")
}

func writeRoles(buf *bytes.Buffer, m *ansible.Model) {
	for _, name := range m.RoleOrder {
		id := "role_" + mermaid.Sanitize(name)
		fmt.Fprintf(buf, "  %q [label=%q, shape=diamond, fillcolor=%q];\n", id, name, "#f3e5f5")
	}
	for _, name := range m.RoleOrder {
		id := "role_" + mermaid.Sanitize(name)
		for _, dep := range m.RoleDeps[name] {
			fmt.Fprintf(buf, "  %q -> %q [label=\"depends\"];\n", id, "role_"+mermaid.Sanitize(dep))
		}
	}
}
