// Package cli implements the annotkit command-line interface.
//
// Commands cover the four engine operations: list (decode), add,
// remove, and clear. All commands support --verbose (-v) for
// debug-level logging; the engine's skip decisions only surface there.
// Loggers travel through context.Context so every command shares one
// configured instance.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/markpad/annotkit/annotation"
	"github.com/markpad/annotkit/observability"
)

// newLogger creates a logger with timestamp formatting, writing to w
// and filtering at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const (
	loggerKey ctxKey = iota
	configKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext falls back to log.Default so commands always have a
// valid logger even if context setup failed.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func configFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return defaultConfig()
}

// engineLog adapts the CLI logger onto the engine's logging seam.
type engineLog struct {
	l *log.Logger
}

func keyvals(fields []observability.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}

func (a engineLog) Debug(msg string, fields ...observability.Field) {
	a.l.Debug(msg, keyvals(fields)...)
}
func (a engineLog) Info(msg string, fields ...observability.Field) {
	a.l.Info(msg, keyvals(fields)...)
}
func (a engineLog) Warn(msg string, fields ...observability.Field) {
	a.l.Warn(msg, keyvals(fields)...)
}
func (a engineLog) Error(msg string, fields ...observability.Field) {
	a.l.Error(msg, keyvals(fields)...)
}

func newEngine(ctx context.Context) *annotation.Engine {
	return annotation.NewEngine(annotation.WithLogger(engineLog{l: loggerFromContext(ctx)}))
}
