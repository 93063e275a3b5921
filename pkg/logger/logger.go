// Package logger is the run-wide structured logger for wcnt.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured context for a log message, field name to value.
type Fields map[string]interface{}

// Logger is the logging interface the pipeline stages share. Verbosity
// follows the -v flag: 0 logs info and above, 1 adds debug, 2 adds trace.
type Logger interface {
	// Trace logs per-item events (a dropped duplicate, a resolved path).
	// Only shown when verbosity >= 2.
	Trace(msg string)

	// Debug logs stage-level detail. Only shown when verbosity >= 1.
	Debug(msg string)

	// Info logs run milestones.
	Info(msg string)

	// Warn logs recoverable problems, like an unreadable log file.
	Warn(msg string)

	// Error logs failures.
	Error(msg string)

	// WithFields returns a Logger that attaches the fields to every
	// message it emits. The receiver is unchanged.
	WithFields(fields Fields) Logger
}

// Config holds the configuration for creating a logger.
type Config struct {
	// Verbosity is the -v count: 0 info, 1 debug, 2 trace.
	Verbosity int

	// Output is where log lines are written, os.Stderr when nil.
	Output io.Writer
}

// zapLogger adapts a zap core to the Logger interface. Trace has no zap
// level of its own; it rides on debug and is gated by verbosity here.
type zapLogger struct {
	base      *zap.Logger
	verbosity int
}

// NewLogger creates a logger emitting one JSON object per line.
func NewLogger(config Config) Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(enc),
		zapcore.AddSync(out),
		threshold(config.Verbosity),
	)

	return &zapLogger{
		base:      zap.New(core),
		verbosity: config.Verbosity,
	}
}

func threshold(verbosity int) zapcore.LevelEnabler {
	if verbosity >= 1 {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func (l *zapLogger) Trace(msg string) {
	if l.verbosity < 2 {
		return
	}
	l.base.Debug(msg, zap.Bool("trace", true))
}

func (l *zapLogger) Debug(msg string) { l.base.Debug(msg) }
func (l *zapLogger) Info(msg string)  { l.base.Info(msg) }
func (l *zapLogger) Warn(msg string)  { l.base.Warn(msg) }
func (l *zapLogger) Error(msg string) { l.base.Error(msg) }

func (l *zapLogger) WithFields(fields Fields) Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	return &zapLogger{
		base:      l.base.With(zapFields...),
		verbosity: l.verbosity,
	}
}
