package ansible

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtractTaskPlain(t *testing.T) {
	p := newTestParser(t, t.TempDir())

	node := p.ExtractTask(map[string]any{
		"name": "install nginx",
		"apt":  map[string]any{"name": "nginx"},
	}, "site.yml")

	if node.Kind != TaskPlain {
		t.Errorf("Kind = %v, want %v", node.Kind, TaskPlain)
	}
	if node.Name != "install nginx" {
		t.Errorf("Name = %q", node.Name)
	}
}

func TestExtractTaskDefaultName(t *testing.T) {
	p := newTestParser(t, t.TempDir())
	node := p.ExtractTask(map[string]any{"command": "uptime"}, "site.yml")
	if node.Name != DefaultTaskName {
		t.Errorf("Name = %q, want %q", node.Name, DefaultTaskName)
	}
}

func TestExtractTaskNormalization(t *testing.T) {
	p := newTestParser(t, t.TempDir())

	tests := []struct {
		name string
		raw  map[string]any
		want TaskNode
	}{
		{
			name: "when scalar becomes list",
			raw:  map[string]any{"name": "t", "when": "ansible_os_family == 'Debian'"},
			want: TaskNode{When: []string{"ansible_os_family == 'Debian'"}},
		},
		{
			name: "when list is kept",
			raw:  map[string]any{"name": "t", "when": []any{"a", "b"}},
			want: TaskNode{When: []string{"a", "b"}},
		},
		{
			name: "tags scalar becomes list",
			raw:  map[string]any{"name": "t", "tags": "deploy"},
			want: TaskNode{Tags: []string{"deploy"}},
		},
		{
			name: "notify scalar becomes list",
			raw:  map[string]any{"name": "t", "notify": "restart nginx"},
			want: TaskNode{Notify: []string{"restart nginx"}},
		},
		{
			name: "notify list is kept",
			raw:  map[string]any{"name": "t", "notify": []any{"restart nginx", "reload firewall"}},
			want: TaskNode{Notify: []string{"restart nginx", "reload firewall"}},
		},
		{
			name: "become with user",
			raw:  map[string]any{"name": "t", "become": true, "become_user": "deploy"},
			want: TaskNode{Become: true, BecomeUser: "deploy"},
		},
		{
			name: "become false not recorded",
			raw:  map[string]any{"name": "t", "become": false, "become_user": "deploy"},
			want: TaskNode{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := p.ExtractTask(tt.raw, "site.yml")
			if !reflect.DeepEqual(node.When, tt.want.When) {
				t.Errorf("When = %v, want %v", node.When, tt.want.When)
			}
			if !reflect.DeepEqual(node.Tags, tt.want.Tags) {
				t.Errorf("Tags = %v, want %v", node.Tags, tt.want.Tags)
			}
			if !reflect.DeepEqual(node.Notify, tt.want.Notify) {
				t.Errorf("Notify = %v, want %v", node.Notify, tt.want.Notify)
			}
			if node.Become != tt.want.Become || node.BecomeUser != tt.want.BecomeUser {
				t.Errorf("Become = %v/%q, want %v/%q",
					node.Become, node.BecomeUser, tt.want.Become, tt.want.BecomeUser)
			}
		})
	}
}

func TestExtractTaskBlockOrder(t *testing.T) {
	p := newTestParser(t, t.TempDir())

	node := p.ExtractTask(map[string]any{
		"name": "error handling",
		"when": "deploy_enabled",
		"block": []any{
			map[string]any{"name": "A"},
			map[string]any{"name": "B"},
		},
		"rescue": []any{map[string]any{"name": "C"}},
		"always": []any{map[string]any{"name": "D"}},
	}, "site.yml")

	if node.Kind != TaskBlock {
		t.Fatalf("Kind = %v, want %v", node.Kind, TaskBlock)
	}

	var names []string
	for _, child := range node.Children {
		names = append(names, child.Name)
	}
	if !reflect.DeepEqual(names, []string{"A", "B", "C", "D"}) {
		t.Errorf("children = %v, want [A B C D]", names)
	}

	// Block metadata attaches to the block node, not the children.
	if !reflect.DeepEqual(node.When, []string{"deploy_enabled"}) {
		t.Errorf("block When = %v", node.When)
	}
	for _, child := range node.Children {
		if child.When != nil {
			t.Errorf("child %s inherited When = %v", child.Name, child.When)
		}
	}
}

func TestExtractTaskRoleRef(t *testing.T) {
	p := newTestParser(t, t.TempDir())

	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			name: "include_role mapping",
			raw:  map[string]any{"include_role": map[string]any{"name": "nginx"}},
			want: "nginx",
		},
		{
			name: "import_role string",
			raw:  map[string]any{"import_role": "redis"},
			want: "redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := p.ExtractTask(tt.raw, "site.yml")
			if node.Kind != TaskRole {
				t.Fatalf("Kind = %v, want %v", node.Kind, TaskRole)
			}
			if node.RoleName != tt.want {
				t.Errorf("RoleName = %q, want %q", node.RoleName, tt.want)
			}
		})
	}
}

func TestExtractTaskBlockWinsOverRole(t *testing.T) {
	// Dispatch priority: block is checked before role references.
	p := newTestParser(t, t.TempDir())
	node := p.ExtractTask(map[string]any{
		"block":        []any{map[string]any{"name": "A"}},
		"include_role": map[string]any{"name": "nginx"},
	}, "site.yml")
	if node.Kind != TaskBlock {
		t.Errorf("Kind = %v, want %v", node.Kind, TaskBlock)
	}
}

func TestExtractTaskIncludeRelative(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "playbooks/sub.yml", `
- name: included one
- name: included two
`)
	base := filepath.Join(dir, "playbooks", "site.yml")

	p := newTestParser(t, dir)
	node := p.ExtractTask(map[string]any{"include_tasks": "sub.yml"}, base)

	if node.Kind != TaskInclude {
		t.Fatalf("Kind = %v, want %v", node.Kind, TaskInclude)
	}
	if node.IncludeFile != "sub.yml" {
		t.Errorf("IncludeFile = %q", node.IncludeFile)
	}
	if len(node.Included) != 2 || node.Included[0].Name != "included one" {
		t.Errorf("Included = %v", node.Included)
	}
}

func TestExtractTaskIncludeRepoRootFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common/setup.yml", "- name: from repo root\n")
	base := filepath.Join(dir, "playbooks", "site.yml")

	p := newTestParser(t, dir)
	node := p.ExtractTask(map[string]any{"import_tasks": "common/setup.yml"}, base)

	if len(node.Included) != 1 || node.Included[0].Name != "from repo root" {
		t.Errorf("Included = %v", node.Included)
	}
}

func TestExtractTaskIncludeFileMapping(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub.yml", "- name: nested\n")

	p := newTestParser(t, dir)
	node := p.ExtractTask(map[string]any{
		"include_tasks": map[string]any{"file": "sub.yml"},
	}, filepath.Join(dir, "site.yml"))

	if node.IncludeFile != "sub.yml" || len(node.Included) != 1 {
		t.Errorf("IncludeFile = %q, Included = %v", node.IncludeFile, node.Included)
	}
}

func TestExtractTaskIncludeMissingIsSoft(t *testing.T) {
	dir := t.TempDir()
	diags := NewDiagnostics(nil)
	p := NewParser(dir, diags)

	node := p.ExtractTask(map[string]any{"include_tasks": "missing.yml"},
		filepath.Join(dir, "site.yml"))

	if node.Kind != TaskInclude {
		t.Fatalf("Kind = %v, want %v", node.Kind, TaskInclude)
	}
	if len(node.Included) != 0 {
		t.Errorf("Included = %v, want empty", node.Included)
	}
	if len(diags.Warnings()) == 0 {
		t.Error("expected a warning for unresolvable include")
	}
}

func TestExtractTaskNestedInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "outer.yml", "- name: outer task\n- include_tasks: inner.yml\n")
	writeFile(t, dir, "inner.yml", "- name: inner task\n")

	p := newTestParser(t, dir)
	node := p.ExtractTask(map[string]any{"include_tasks": "outer.yml"},
		filepath.Join(dir, "site.yml"))

	if len(node.Included) != 2 {
		t.Fatalf("Included = %d nodes, want 2", len(node.Included))
	}
	nested := node.Included[1]
	if nested.Kind != TaskInclude || len(nested.Included) != 1 {
		t.Errorf("nested include not expanded: %+v", nested)
	}
	if nested.Included[0].Name != "inner task" {
		t.Errorf("nested task = %q", nested.Included[0].Name)
	}
}
