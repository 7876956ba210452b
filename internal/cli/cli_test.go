package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "inventory/hosts", "[web]\nweb1\n")
	writeFile(t, root, "playbooks/site.yml", `- hosts: web
  tasks:
    - name: ping hosts
      ansible.builtin.ping:
`)
	return root
}

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestRootCommandWiring(t *testing.T) {
	root := testCLI().RootCommand()

	if root.Use != "playgraph" {
		t.Errorf("Use = %q, want playgraph", root.Use)
	}

	want := map[string]bool{
		"scan": false, "generate": false, "serve": false,
		"cache": false, "completion": false,
	}
	for _, cmd := range root.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cacheDir() = %q, want a %q directory", dir, appName)
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "mermaid" {
		t.Errorf("parseFormats(\"\") = %v, want [mermaid]", got)
	}
	got := parseFormats("mermaid,dot")
	if len(got) != 2 || got[0] != "mermaid" || got[1] != "dot" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestFormatExt(t *testing.T) {
	tests := map[string]string{
		"mermaid": ".mmd",
		"dot":     ".dot",
		"svg":     ".svg",
	}
	for format, want := range tests {
		if got := formatExt(format); got != want {
			t.Errorf("formatExt(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestRunGenerateWritesFiles(t *testing.T) {
	repo := fixtureRepo(t)
	out := filepath.Join(t.TempDir(), "site")

	c := testCLI()
	opts := &generateOpts{
		layout:  "LR",
		formats: []string{"mermaid", "dot"},
		output:  out,
		noCache: true,
	}
	if err := c.runGenerate(context.Background(), repo, opts); err != nil {
		t.Fatalf("runGenerate failed: %v", err)
	}

	mmd, err := os.ReadFile(out + ".mmd")
	if err != nil {
		t.Fatalf("missing mermaid output: %v", err)
	}
	if !strings.Contains(string(mmd), "graph LR") {
		t.Error("mermaid output missing header")
	}

	dot, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatalf("missing dot output: %v", err)
	}
	if !strings.Contains(string(dot), "digraph ansible") {
		t.Error("dot output missing header")
	}
}

func TestRunGenerateDiscoversInputs(t *testing.T) {
	repo := fixtureRepo(t)
	out := filepath.Join(t.TempDir(), "auto")

	c := testCLI()
	opts := &generateOpts{
		layout:  "TB",
		formats: []string{"mermaid"},
		output:  out,
		noCache: true,
	}
	if err := c.runGenerate(context.Background(), repo, opts); err != nil {
		t.Fatalf("runGenerate failed: %v", err)
	}

	mmd, err := os.ReadFile(out + ".mmd")
	if err != nil {
		t.Fatalf("missing output: %v", err)
	}
	// Inventory was auto-discovered
	if !strings.Contains(string(mmd), "web1") {
		t.Error("diagram missing discovered inventory host")
	}
	if !strings.Contains(string(mmd), "graph TB") {
		t.Error("diagram missing TB layout")
	}
}

func TestRunScan(t *testing.T) {
	repo := fixtureRepo(t)
	if err := testCLI().runScan(repo, false); err != nil {
		t.Fatalf("runScan failed: %v", err)
	}
	if err := testCLI().runScan("../../etc", false); err == nil {
		t.Error("expected traversal path to be rejected")
	}
}
