package ansible

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestAssembleSharedImportParsedOnce(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yml", "- import_playbook: shared.yml\n")
	b := writeFile(t, dir, "b.yml", "- import_playbook: shared.yml\n")
	writeFile(t, dir, "shared.yml", "- hosts: all\n  tasks:\n    - name: shared task\n")

	m, err := NewAssembler(dir, NewDiagnostics(nil)).Assemble(nil, []string{a, b})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	shared := filepath.Join(dir, "shared.yml")
	if !reflect.DeepEqual(m.PlaybookOrder, []string{a, b, shared}) {
		t.Errorf("PlaybookOrder = %v", m.PlaybookOrder)
	}
	if len(m.Playbooks) != 3 {
		t.Errorf("playbooks = %d, want 3", len(m.Playbooks))
	}
}

func TestAssembleMissingImportSkipped(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yml", "- import_playbook: gone.yml\n- hosts: all\n  tasks:\n    - name: t\n")

	m, err := NewAssembler(dir, NewDiagnostics(nil)).Assemble(nil, []string{a})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(m.Playbooks) != 1 {
		t.Errorf("playbooks = %d, want 1 (missing import must be skipped)", len(m.Playbooks))
	}
	// The unresolved target still appears in the playbook's import list.
	if len(m.Playbooks[a].Imports) != 1 {
		t.Errorf("Imports = %v", m.Playbooks[a].Imports)
	}
}

func TestAssembleGroupsMergeOverwrite(t *testing.T) {
	dir := t.TempDir()
	inv1 := writeFile(t, dir, "inv1.yml", "web:\n  hosts:\n    old1:\ndb:\n  hosts:\n    db1:\n")
	inv2 := writeFile(t, dir, "inv2.yml", "web:\n  hosts:\n    new1:\n    new2:\n")

	m, err := NewAssembler(dir, NewDiagnostics(nil)).Assemble([]string{inv1, inv2}, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if !reflect.DeepEqual(m.Groups["web"].Hosts, []string{"new1", "new2"}) {
		t.Errorf("web hosts = %v, want later inventory to win", m.Groups["web"].Hosts)
	}
	if !reflect.DeepEqual(m.Groups["db"].Hosts, []string{"db1"}) {
		t.Errorf("db hosts = %v", m.Groups["db"].Hosts)
	}
	if !reflect.DeepEqual(m.GroupOrder, []string{"web", "db"}) {
		t.Errorf("GroupOrder = %v", m.GroupOrder)
	}
}

func TestAssembleCollectsNestedRoleRefs(t *testing.T) {
	dir := t.TempDir()
	site := writeFile(t, dir, "site.yml", `
- hosts: all
  roles:
    - listed
  tasks:
    - name: wrapper
      block:
        - include_role:
            name: blocked
    - include_tasks: extra.yml
`)
	writeFile(t, dir, "extra.yml", "- import_role: included\n")
	writeFile(t, dir, "roles/listed/tasks/main.yml", "- name: t\n")
	writeFile(t, dir, "roles/blocked/tasks/main.yml", "- name: t\n")
	writeFile(t, dir, "roles/included/tasks/main.yml", "- name: t\n")
	writeFile(t, dir, "roles/listed/meta/main.yml", "dependencies: [transitive]\n")
	writeFile(t, dir, "roles/transitive/tasks/main.yml", "- name: t\n")

	m, err := NewAssembler(dir, NewDiagnostics(nil)).Assemble(nil, []string{site})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := []string{"listed", "blocked", "included", "transitive"}
	if !reflect.DeepEqual(m.RoleOrder, want) {
		t.Errorf("RoleOrder = %v, want %v", m.RoleOrder, want)
	}
	for _, role := range want {
		if len(m.RoleTasks[role]) == 0 {
			t.Errorf("RoleTasks[%s] empty", role)
		}
	}
}

func TestAssembleTaskCount(t *testing.T) {
	dir := t.TempDir()
	site := writeFile(t, dir, "site.yml", `
- hosts: all
  tasks:
    - name: plain
    - name: wrapper
      block:
        - name: inner
`)

	m, err := NewAssembler(dir, NewDiagnostics(nil)).Assemble(nil, []string{site})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := m.TaskCount(); got != 3 {
		t.Errorf("TaskCount = %d, want 3", got)
	}
}
