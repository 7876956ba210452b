package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/playgraph/playgraph/internal/config"
	"github.com/playgraph/playgraph/pkg/pipeline"
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

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := NewServer(runner, config.Default(), logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestScan(t *testing.T) {
	ts := testServer(t)
	root := fixtureRepo(t)

	resp := postJSON(t, ts.URL+"/api/scan", map[string]any{"repo_root": root})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	res := decode[scanResponse](t, resp)
	if len(res.Inventories) != 1 || res.Inventories[0] != "inventory/hosts" {
		t.Errorf("inventories = %v", res.Inventories)
	}
	if len(res.Playbooks) != 1 || res.Playbooks[0] != "playbooks/site.yml" {
		t.Errorf("playbooks = %v", res.Playbooks)
	}
}

func TestScanMissingRoot(t *testing.T) {
	ts := testServer(t)
	root := filepath.Join(t.TempDir(), "does-not-exist")

	resp := postJSON(t, ts.URL+"/api/scan", map[string]any{"repo_root": root})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	res := decode[errorResponse](t, resp)
	if res.Code != "FILE_NOT_FOUND" {
		t.Errorf("code = %q, want FILE_NOT_FOUND", res.Code)
	}
}

func TestScanRejectsTraversal(t *testing.T) {
	ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/scan", map[string]any{"repo_root": "../../etc"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	res := decode[errorResponse](t, resp)
	if res.Code != "INVALID_PATH" {
		t.Errorf("code = %q, want INVALID_PATH", res.Code)
	}
}

func TestGenerate(t *testing.T) {
	ts := testServer(t)
	root := fixtureRepo(t)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]any{
		"repo_root":   root,
		"inventories": []string{"inventory/hosts"},
		"playbooks":   []string{"playbooks/site.yml"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	res := decode[generateResponse](t, resp)
	if res.DiagramID == "" {
		t.Error("expected a diagram ID")
	}
	if res.Layout != "LR" {
		t.Errorf("layout = %q, want LR (server default)", res.Layout)
	}
	diagram := res.Artifacts["mermaid"]
	if diagram == "" {
		t.Fatal("expected a mermaid artifact")
	}
	for _, want := range []string{"graph LR", "web1", "ping hosts"} {
		if !bytes.Contains([]byte(diagram), []byte(want)) {
			t.Errorf("diagram missing %q", want)
		}
	}
	if res.Stats.Groups != 1 || res.Stats.Playbooks != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestGenerateInvalidLayout(t *testing.T) {
	ts := testServer(t)
	root := fixtureRepo(t)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]any{
		"repo_root": root,
		"playbooks": []string{"playbooks/site.yml"},
		"layout":    "diagonal",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	res := decode[errorResponse](t, resp)
	if res.Code != "INVALID_LAYOUT" {
		t.Errorf("code = %q, want INVALID_LAYOUT", res.Code)
	}
}

func TestGenerateMissingPlaybook(t *testing.T) {
	ts := testServer(t)
	root := fixtureRepo(t)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]any{
		"repo_root": root,
		"playbooks": []string{"playbooks/absent.yml"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGenerateBadBody(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
