// Package pkg provides the core libraries for playgraph Ansible visualization.
//
// # Overview
//
// Playgraph turns an Ansible repository into diagrams that show which plays
// run on which hosts and how roles depend on each other. The pkg directory is
// organized into five main areas:
//
//  1. [ansible] - Domain logic (inventory, playbook and role parsing)
//  2. [mermaid] / [dot] - Diagram emitters (Mermaid flowcharts, Graphviz)
//  3. [discover] - Repository scanning for input files
//  4. [cache] - Diagram caching (file, Redis, null backends)
//  5. [pipeline] - Orchestration (parse → render) used by CLI and API
//
// # Architecture
//
// The typical data flow through playgraph:
//
//	Ansible Repository
//	         ↓
//	    [discover] package (find inventories and playbooks)
//	         ↓
//	    [ansible] package (parse into a repository model)
//	         ↓
//	    [mermaid] / [dot] packages (emit diagrams)
//	         ↓
//	    Mermaid/DOT/SVG output
//
// # Quick Start
//
// Parse a repository and render a Mermaid diagram:
//
//	import (
//	    "github.com/playgraph/playgraph/pkg/ansible"
//	    "github.com/playgraph/playgraph/pkg/discover"
//	    "github.com/playgraph/playgraph/pkg/mermaid"
//	)
//
//	// 1. Discover input files
//	found, _ := discover.Scan("/path/to/repo")
//
//	// 2. Assemble the repository model
//	diags := ansible.NewDiagnostics(nil)
//	asm := ansible.NewAssembler("/path/to/repo", diags)
//	model, _ := asm.Assemble(found.Inventories, found.Playbooks)
//
//	// 3. Emit the diagram
//	diagram := mermaid.Generate(model, mermaid.LayoutLR)
//
// # Main Packages
//
// [ansible] - Parsing and resolution core. Flattens YAML and INI inventories
// into group→host mappings, walks playbooks (following import_playbook),
// extracts recursive task trees (plain tasks, blocks, role references,
// includes) and resolves transitive role dependencies with cycle protection.
// Soft misses are collected by a Diagnostics sink instead of aborting runs.
//
// [mermaid] - The full-detail Mermaid flowchart emitter: inventory, playbook
// and role subgraphs, task trees with tag/condition/privilege annotations,
// and handler notification edges. Output is deterministic.
//
// [dot] - A compact Graphviz overview (groups, playbooks, roles and their
// structural edges) plus SVG rendering via go-graphviz.
//
// [discover] - Structural scanning for inventory/ files and playbooks/*.yml
// candidates, honoring .gitignore.
//
// [cache] - Content-addressed diagram caching with file, Redis and null
// backends behind one interface, shared by CLI and server.
//
// [pipeline] - Complete diagram pipeline (parse → render) used by CLI and
// API. Ensures consistent behavior across all entry points.
//
// [errors] - Structured errors with machine-readable codes, shared across
// CLI exit handling and API status mapping.
//
// [observability] - Optional instrumentation hooks for pipeline and cache
// events without hard backend dependencies.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/ansible/...  # Specific package
//
// [ansible]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/ansible
// [mermaid]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/mermaid
// [dot]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/dot
// [discover]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/discover
// [cache]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/playgraph/playgraph/pkg/observability
package pkg
