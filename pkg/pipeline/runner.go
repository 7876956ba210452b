package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/playgraph/playgraph/pkg/ansible"
	"github.com/playgraph/playgraph/pkg/cache"
	"github.com/playgraph/playgraph/pkg/dot"
	"github.com/playgraph/playgraph/pkg/errors"
	"github.com/playgraph/playgraph/pkg/mermaid"
	"github.com/playgraph/playgraph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Generate runs the complete parse → render pipeline with caching.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	inputHash := r.hashInputs(opts)

	// Try to get all formats from cache (unless refresh requested)
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.DiagramKey(inputHash, cache.DiagramKeyOpts{
				Layout: opts.Layout,
				Format: format,
			})
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "diagram")
				artifacts = nil
				break
			}
			observability.Cache().OnCacheHit(ctx, "diagram")
			artifacts[format] = data
		}
		if artifacts != nil {
			r.Logger.Debug("all artifacts served from cache", "formats", opts.Formats)
			return &Result{
				Artifacts: artifacts,
				CacheInfo: CacheInfo{Hit: true},
			}, nil
		}
	}

	result := &Result{
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, opts.RepoRoot)
	diags := ansible.NewDiagnostics(opts.Logger)
	asm := ansible.NewAssembler(opts.RepoRoot, diags)
	m, err := asm.Assemble(r.resolvePaths(opts, opts.Inventories), r.resolvePaths(opts, opts.Playbooks))
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, opts.RepoRoot, 0, time.Since(parseStart), err)
		return nil, err
	}
	observability.Pipeline().OnParseComplete(ctx, opts.RepoRoot, m.TaskCount(), time.Since(parseStart), nil)
	result.Model = m
	result.Warnings = diags.Warnings()
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Groups = len(m.GroupOrder)
	result.Stats.Playbooks = len(m.PlaybookOrder)
	result.Stats.Roles = len(m.RoleOrder)
	result.Stats.Tasks = m.TaskCount()

	r.Logger.Info("assembled repository model",
		"groups", result.Stats.Groups,
		"playbooks", result.Stats.Playbooks,
		"roles", result.Stats.Roles,
		"tasks", result.Stats.Tasks,
		"warnings", len(result.Warnings),
		"duration", result.Stats.ParseTime)

	// Stage 2: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	layout, err := mermaid.ParseLayout(opts.Layout)
	if err != nil {
		return nil, err
	}
	for _, format := range opts.Formats {
		data, err := r.render(ctx, m, layout, format)
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
			return nil, err
		}
		result.Artifacts[format] = data

		key := r.Keyer.DiagramKey(inputHash, cache.DiagramKeyOpts{
			Layout: opts.Layout,
			Format: format,
		})
		_ = r.Cache.Set(ctx, key, data, opts.CacheTTL)
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, nil)

	r.Logger.Info("rendered diagrams",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// render emits the model in one format.
func (r *Runner) render(ctx context.Context, m *ansible.Model, layout mermaid.Layout, format string) ([]byte, error) {
	switch format {
	case FormatMermaid:
		return []byte(mermaid.Generate(m, layout)), nil
	case FormatDOT:
		return []byte(dot.ToDOT(m, string(layout))), nil
	case FormatSVG:
		svg, err := dot.RenderSVG(ctx, dot.ToDOT(m, string(layout)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
		}
		return svg, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "invalid format: %q", format)
	}
}

// hashInputs content-addresses the request: every declared input file's path
// and bytes, plus the repo root, feed one hash. Role files and includes are
// not covered; the TTL bounds staleness from those.
func (r *Runner) hashInputs(opts Options) string {
	parts := [][]byte{[]byte(opts.RepoRoot)}
	for _, rel := range append(append([]string{}, opts.Inventories...), opts.Playbooks...) {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.RepoRoot, rel)
		}
		parts = append(parts, []byte(rel))
		if data, err := os.ReadFile(path); err == nil {
			parts = append(parts, data)
		}
	}
	return cache.HashParts(parts...)
}

// resolvePaths joins relative input paths onto the repo root.
func (r *Runner) resolvePaths(opts Options, paths []string) []string {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			resolved[i] = p
		} else {
			resolved[i] = filepath.Join(opts.RepoRoot, p)
		}
	}
	return resolved
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
