// Package discover finds Ansible inventories and playbooks in a repository.
//
// Detection is structural: inventory files live directly inside a directory
// named "inventory", playbook candidates are .yml files directly inside a
// directory named "playbooks" that contain a "hosts:" key. The caller feeds
// the discovered paths to the parser; discovery itself never parses YAML.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/playgraph/playgraph/pkg/errors"
)

// Result holds the discovered input files, as paths relative to the scanned
// root, sorted lexicographically.
type Result struct {
	Inventories []string `json:"inventories"`
	Playbooks   []string `json:"playbooks"`
}

var skipDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	"node_modules":  {},
	"__pycache__":   {},
	"venv":          {},
	".venv":         {},
	".tox":          {},
	".molecule":     {},
	".pytest_cache": {},
}

// Scan walks root and returns the discovered inventories and playbooks.
// Hidden directories, common tool directories and paths matched by the
// repository's .gitignore are skipped. A root that does not exist is a
// FILE_NOT_FOUND error; unreadable entries inside the tree are skipped.
func Scan(root string) (*Result, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scan %s", root)
	}

	gi := loadGitignore(root)
	res := &Result{}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		switch filepath.Base(filepath.Dir(path)) {
		case "inventory":
			res.Inventories = append(res.Inventories, rel)
		case "playbooks":
			if filepath.Ext(name) == ".yml" && hasHostsKey(path) {
				res.Playbooks = append(res.Playbooks, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(res.Inventories)
	sort.Strings(res.Playbooks)
	return res, nil
}

// hasHostsKey reports whether the file mentions a hosts: key. A plain
// substring check is enough to filter out task files and variable files that
// happen to live next to playbooks.
func hasHostsKey(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "hosts:")
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
