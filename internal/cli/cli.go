// Package cli implements the playgraph command-line interface.
//
// This package provides commands for scanning repositories for Ansible
// inventories and playbooks, generating diagrams from them, serving the HTTP
// API, and managing the diagram cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - scan: Discover inventories and playbooks in a repository
//   - generate: Render Mermaid, DOT or SVG diagrams from a repository
//   - serve: Run the HTTP API server
//   - cache: Manage the diagram cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/playgraph/playgraph/pkg/buildinfo"
	"github.com/playgraph/playgraph/pkg/cache"
	"github.com/playgraph/playgraph/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "playgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "playgraph",
		Short:        "Playgraph visualizes Ansible repositories as diagrams",
		Long:         `Playgraph parses the inventories, playbooks and roles of an Ansible repository and renders them as Mermaid, DOT or SVG diagrams, making it easier to understand which plays run where and which roles depend on each other.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/playgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatMermaid}
	}
	return strings.Split(s, ",")
}

// formatExt maps an output format to its file extension.
func formatExt(format string) string {
	switch format {
	case pipeline.FormatMermaid:
		return ".mmd"
	case pipeline.FormatDOT:
		return ".dot"
	case pipeline.FormatSVG:
		return ".svg"
	}
	return "." + format
}
