// Package cli implements the keyplate command-line interface.
//
// This package provides commands for interpreting keyboard layouts, deriving
// switch plates from them, serving the pipeline over HTTP and managing the
// local result cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - keys: Interpret a layout into key placements
//   - plate: Derive the plate outline, switch and stabilizer cutouts
//   - batch: Derive plates for many layouts in parallel
//   - serve: Run the HTTP API
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every pipeline stage and cache lookup.
//
// # Example
//
//	import "github.com/matzehuels/keyplate/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress measures one operation and logs its completion with the elapsed
// time as a structured field.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals plus elapsed, rounded to the millisecond:
//
//	14:32:01.45 INFO processed layouts count=12 failed=1 elapsed=1.234s
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
