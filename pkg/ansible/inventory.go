package ansible

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/playgraph/playgraph/pkg/errors"
)

// Inventory is an ordered group→hosts mapping parsed from one file.
type Inventory struct {
	Groups map[string][]string
	Order  []string
}

// newInventory creates an empty inventory.
func newInventory() *Inventory {
	return &Inventory{Groups: make(map[string][]string)}
}

// set records a group's hosts, keeping the position of an earlier
// declaration with the same name.
func (inv *Inventory) set(name string, hosts []string) {
	if _, ok := inv.Groups[name]; !ok {
		inv.Order = append(inv.Order, name)
	}
	inv.Groups[name] = hosts
}

// ensure registers a group with an empty host list unless already present.
func (inv *Inventory) ensure(name string) {
	if _, ok := inv.Groups[name]; !ok {
		inv.Order = append(inv.Order, name)
		inv.Groups[name] = []string{}
	}
}

// appendHost adds a host to a group, registering the group if needed.
func (inv *Inventory) appendHost(group, host string) {
	inv.ensure(group)
	inv.Groups[group] = append(inv.Groups[group], host)
}

// ParseInventory parses an inventory file into a group→hosts mapping.
//
// The YAML format is tried first: a top-level mapping of group names to
// {hosts, children} mappings, flattened recursively so that every child
// appears as its own top-level group listing only its directly declared
// hosts. If the content is not valid YAML or the root is not a mapping,
// the file is re-read as a line-oriented INI inventory.
//
// Returns a FILE_NOT_FOUND error if the file cannot be read at all.
func (p *Parser) ParseInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "inventory not found: %s", path)
	}

	if inv, ok := p.parseYAMLInventory(data); ok {
		return inv, nil
	}
	return p.parseINIInventory(data), nil
}

// parseYAMLInventory attempts the YAML inventory format. The yaml.Node API
// is used instead of plain Unmarshal so group ordering follows the file.
func (p *Parser) parseYAMLInventory(data []byte) (*Inventory, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, false
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, false
	}

	inv := newInventory()
	for i := 0; i+1 < len(root.Content); i += 2 {
		p.parseYAMLGroup(inv, root.Content[i].Value, root.Content[i+1])
	}
	return inv, true
}

// parseYAMLGroup flattens one group mapping into the inventory, recursing
// through children. Each group lists only its own directly declared hosts.
func (p *Parser) parseYAMLGroup(inv *Inventory, name string, content *yaml.Node) {
	if content != nil && content.Kind == yaml.AliasNode {
		content = content.Alias
	}
	if content == nil || content.Kind != yaml.MappingNode {
		inv.set(name, []string{})
		return
	}

	hosts := []string{}
	var children *yaml.Node
	for i := 0; i+1 < len(content.Content); i += 2 {
		key, value := content.Content[i].Value, content.Content[i+1]
		switch key {
		case "hosts":
			if value.Kind == yaml.MappingNode {
				for j := 0; j+1 < len(value.Content); j += 2 {
					hosts = append(hosts, value.Content[j].Value)
				}
			}
		case "children":
			children = value
		}
	}
	inv.set(name, hosts)

	if children != nil && children.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(children.Content); i += 2 {
			p.parseYAMLGroup(inv, children.Content[i].Value, children.Content[i+1])
		}
	}
}

// sectionRe matches INI section headers: [group] or [group:suffix].
var sectionRe = regexp.MustCompile(`^\[([^:\]]+)(?::(\w+))?\]$`)

// parseINIInventory parses the line-oriented INI inventory format.
//
// Section headers switch the current group and section kind: "hosts" is the
// default, "vars" sections are ignored, "children" sections register the
// referenced names as empty groups. A host line's first whitespace-delimited
// token is the hostname; trailing key=value tokens are discarded.
func (p *Parser) parseINIInventory(data []byte) *Inventory {
	inv := newInventory()
	group := ""
	section := "hosts"

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			group = m[1]
			section = m[2]
			if section == "" {
				section = "hosts"
			}
			inv.ensure(group)
			continue
		}
		if group == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch section {
		case "hosts":
			inv.appendHost(group, fields[0])
		case "children":
			inv.ensure(fields[0])
		}
	}
	return inv
}
