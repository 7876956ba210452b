// Package pipeline provides the core diagram pipeline for playgraph.
//
// This package implements the complete parse → render flow that is shared by
// the CLI and the HTTP API. By centralizing this logic, we ensure consistent
// behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Parse: assemble inventories, playbooks and roles into a repository model
//  2. Render: emit the model in the requested formats (Mermaid, DOT, SVG)
//
// Rendered artifacts are cached under a content hash of the declared input
// files, so repeated requests against an unchanged repository skip both
// stages entirely.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RepoRoot:  "/path/to/repo",
//	    Playbooks: []string{"playbooks/site.yml"},
//	    Formats:   []string{"mermaid"},
//	}
//	result, err := runner.Generate(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diagram := result.Artifacts["mermaid"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/playgraph/playgraph/pkg/ansible"
	"github.com/playgraph/playgraph/pkg/cache"
	"github.com/playgraph/playgraph/pkg/errors"
	"github.com/playgraph/playgraph/pkg/mermaid"
)

// Format constants for output formats.
const (
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMermaid: true,
	FormatDOT:     true,
	FormatSVG:     true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: mermaid, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// RepoRoot is the repository to analyze. Required.
	RepoRoot string `json:"repo_root"`

	// Inventories and Playbooks are the input files, relative to RepoRoot
	// or absolute. At least one playbook is required.
	Inventories []string `json:"inventories,omitempty"`
	Playbooks   []string `json:"playbooks"`

	// Layout is the diagram flow direction (LR, TB, RL, BT). Defaults to LR.
	Layout string `json:"layout,omitempty"`

	// Formats selects the output formats. Defaults to ["mermaid"].
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the cache for reads; results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// CacheTTL bounds staleness from files the cache key does not cover.
	// Defaults to cache.DefaultTTL.
	CacheTTL time.Duration `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`

	// layout is the parsed form of Layout.
	layout mermaid.Layout
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if err := errors.ValidateRepoPath(o.RepoRoot); err != nil {
		return err
	}
	if len(o.Playbooks) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one playbook is required")
	}
	for _, p := range append(append([]string{}, o.Inventories...), o.Playbooks...) {
		if err := errors.ValidateInputPath(p); err != nil {
			return err
		}
	}

	layout, err := mermaid.ParseLayout(o.Layout)
	if err != nil {
		return err
	}
	o.layout = layout
	o.Layout = string(layout)

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatMermaid}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.CacheTTL == 0 {
		o.CacheTTL = cache.DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the parsed repository model. Nil when every requested
	// artifact came from the cache.
	Model *ansible.Model

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings are the soft parse misses collected during assembly.
	Warnings []ansible.Warning

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the run hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Groups     int
	Playbooks  int
	Roles      int
	Tasks      int
	ParseTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	Hit bool // Whether all artifacts came from cache
}
