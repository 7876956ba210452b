package ansible

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Warning is a non-fatal parse diagnostic: a role file that could not be
// loaded, an include that resolved to nothing, an empty playbook.
type Warning struct {
	Path    string `json:"path"` // file the warning refers to
	Message string `json:"message"`
}

// String returns the warning in "path: message" form.
func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// Diagnostics collects non-fatal warnings produced while parsing.
//
// Each generation request owns its own Diagnostics instance, so concurrent
// requests never interleave warnings through shared process-wide log state.
// When a logger is attached, warnings are additionally logged as they occur.
type Diagnostics struct {
	logger   *log.Logger
	warnings []Warning
}

// NewDiagnostics creates a diagnostics sink. The logger may be nil, in which
// case warnings are only collected.
func NewDiagnostics(logger *log.Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

// Warnf records a warning for the given path.
func (d *Diagnostics) Warnf(path, format string, args ...any) {
	w := Warning{Path: path, Message: fmt.Sprintf(format, args...)}
	d.warnings = append(d.warnings, w)
	if d.logger != nil {
		d.logger.Warn(w.Message, "path", path)
	}
}

// Warnings returns the collected warnings in occurrence order.
func (d *Diagnostics) Warnings() []Warning {
	return d.warnings
}
