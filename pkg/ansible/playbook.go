package ansible

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/playgraph/playgraph/pkg/errors"
)

// ParsePlaybook parses one playbook file into an ordered list of plays plus
// the resolved import_playbook targets.
//
// A YAML syntax error is fatal and reported as INVALID_FORMAT with the
// offending path. Empty or non-sequence content yields an empty playbook
// and a warning. Top-level elements consisting of an import_playbook
// directive are resolved relative to the playbook's own directory and
// recorded as imports without becoming plays.
func (p *Parser) ParsePlaybook(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "playbook not found: %s", path)
	}

	pb := &Playbook{Path: path, Name: filepath.Base(path)}

	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid YAML in %s", path)
	}

	plays := asList(content)
	if len(plays) == 0 {
		p.diags.Warnf(path, "empty or non-sequence playbook")
		return pb, nil
	}

	for _, elem := range plays {
		raw, ok := elem.(map[string]any)
		if !ok {
			continue
		}

		if imp := stringify(raw["import_playbook"]); imp != "" {
			resolved := filepath.Clean(filepath.Join(filepath.Dir(path), imp))
			pb.Imports = append(pb.Imports, resolved)
			continue
		}

		pb.Plays = append(pb.Plays, p.extractPlay(raw, path))
	}

	return pb, nil
}

// extractPlay builds one Play from a raw play mapping.
func (p *Parser) extractPlay(raw map[string]any, path string) *Play {
	play := &Play{Hosts: stringify(raw["hosts"])}

	if truthy(raw["become"]) {
		play.Become = true
		play.BecomeUser = stringify(raw["become_user"])
	}
	if tags, ok := raw["tags"]; ok && tags != nil {
		play.Tags = toStringList(tags)
	}

	for _, role := range asList(raw["roles"]) {
		if name := nameFromRef(role); name != "" {
			play.Roles = append(play.Roles, name)
		}
	}

	for _, section := range []string{"pre_tasks", "tasks", "post_tasks"} {
		for _, t := range asList(raw[section]) {
			if m, ok := t.(map[string]any); ok {
				play.Tasks = append(play.Tasks, p.ExtractTask(m, path))
			}
		}
	}

	for _, h := range asList(raw["handlers"]) {
		if m, ok := h.(map[string]any); ok {
			name := stringify(m["name"])
			if name == "" {
				name = DefaultHandlerName
			}
			play.Handlers = append(play.Handlers, name)
		}
	}

	return play
}
