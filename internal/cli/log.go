// Package cli implements the flashaov command-line interface.
//
// The CLI is built with cobra and logs through charmbracelet/log. Status
// lines and tables are styled with lipgloss; the flag picker is a bubbletea
// program.
//
// # Commands
//
//   - reconcile: run one pass over a graph snapshot for a scene
//   - inspect: tabulate the managed output nodes per layer and category
//   - render: export a snapshot as DOT, SVG or JSON
//   - unlink: delete a node and bridge its first input to its first output
//   - pick: toggle the separate/denoise flags interactively
//   - serve: run the HTTP endpoint
//   - store: read or clear stored snapshots
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and reaches the reconciler.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w with short "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs a completion line with the time elapsed since it was created.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Reconciled 2 layer(s) (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
