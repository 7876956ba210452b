package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/playgraph/playgraph/pkg/discover"
	"github.com/playgraph/playgraph/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	inventories []string // inventory files, relative to the repo root
	playbooks   []string // playbook files, relative to the repo root
	layout      string   // diagram flow direction: LR, TB, RL, BT
	output      string   // output file (single format) or base path (multiple)
	refresh     bool     // bypass the cache for reads
	noCache     bool     // disable caching entirely
	formats     []string
}

// generateCommand creates the generate command for rendering diagrams.
//
// When no inventories or playbooks are given, the repository is scanned
// first and all discovered inputs are used.
func (c *CLI) generateCommand() *cobra.Command {
	var formatsStr string
	opts := generateOpts{layout: "LR"}

	cmd := &cobra.Command{
		Use:   "generate [repo]",
		Short: "Render a repository as Mermaid, DOT or SVG diagrams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.inventories, "inventory", "i", nil, "inventory file (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.playbooks, "playbook", "p", nil, "playbook file (repeatable)")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", opts.layout, "diagram direction: LR (default), TB, RL, BT")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): mermaid (default), dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-parse even if a cached diagram exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the diagram cache")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, repo string, opts *generateOpts) error {
	inventories, playbooks := opts.inventories, opts.playbooks
	if len(playbooks) == 0 {
		res, err := discover.Scan(repo)
		if err != nil {
			return err
		}
		if len(inventories) == 0 {
			inventories = res.Inventories
		}
		playbooks = res.Playbooks
		c.Logger.Debug("discovered inputs",
			"inventories", len(inventories), "playbooks", len(playbooks))
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	p := newProgress(c.Logger)
	result, err := runner.Generate(ctx, pipeline.Options{
		RepoRoot:    repo,
		Inventories: inventories,
		Playbooks:   playbooks,
		Layout:      opts.layout,
		Formats:     opts.formats,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	})
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Generated %d diagram(s)", len(result.Artifacts)))

	// The diagram may be going to stdout, so status output stays off it.
	toStdout := opts.output == "" && len(opts.formats) == 1
	for _, w := range result.Warnings {
		if toStdout {
			c.Logger.Warn(w.Message, "path", w.Path)
		} else {
			printWarning("%s: %s", w.Path, w.Message)
		}
	}

	if err := c.writeArtifacts(result, opts); err != nil {
		return err
	}

	if !toStdout {
		printStats(result.Stats.Groups, result.Stats.Playbooks,
			result.Stats.Roles, result.Stats.Tasks, result.CacheInfo.Hit)
	}
	return nil
}

// writeArtifacts writes each rendered format. With no --output and a single
// format the diagram goes to stdout; otherwise files are derived from the
// output base path.
func (c *CLI) writeArtifacts(result *pipeline.Result, opts *generateOpts) error {
	if opts.output == "" && len(opts.formats) == 1 {
		_, err := os.Stdout.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	base := opts.output
	if base == "" {
		base = "playgraph"
	}
	// Strip a known extension so -o diagram.mmd and -o diagram behave alike
	for _, format := range opts.formats {
		if filepath.Ext(base) == formatExt(format) {
			base = base[:len(base)-len(formatExt(format))]
			break
		}
	}

	for _, format := range opts.formats {
		path := base + formatExt(format)
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}
