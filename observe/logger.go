package observe

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Log output formats.
const (
	FormatJSON  = "json"
	FormatPlain = "plain"
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: the correlation id carried by ctx is attached to each entry.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)

	// With returns a logger that adds fields to every entry.
	With(fields ...Field) Logger
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level, case-insensitively.
// Unknown values map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	level, _ := parseLogLevel(s)
	return level
}

func parseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error", "critical":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger writing to stdout.
func NewLogger(level, format string) Logger {
	return NewLoggerWithWriter(level, format, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w. The plain format
// renders human-readable console lines; anything else renders JSON.
func NewLoggerWithWriter(level, format string, w io.Writer) Logger {
	if format == FormatPlain {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	zl := zerolog.New(w).
		Level(ParseLogLevel(level).zerolog()).
		With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.InfoLevel, msg, fields)
}

func (l *zerologLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.WarnLevel, msg, fields)
}

func (l *zerologLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.ErrorLevel, msg, fields)
}

func (l *zerologLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.DebugLevel, msg, fields)
}

func (l *zerologLogger) With(fields ...Field) Logger {
	zctx := l.zl.With()
	for _, f := range fields {
		zctx = zctx.Interface(f.Key, redact(f))
	}
	return &zerologLogger{zl: zctx.Logger()}
}

func (l *zerologLogger) log(ctx context.Context, level zerolog.Level, msg string, fields []Field) {
	ev := l.zl.WithLevel(level)
	if ev == nil {
		return
	}

	if id := CorrelationID(ctx); id != "" {
		ev = ev.Str(CorrelationIDField, id)
	}

	for _, f := range fields {
		if err, ok := f.Value.(error); ok && !isRedactedField(f.Key) {
			ev = ev.Stack().AnErr(f.Key, err)
			continue
		}
		ev = ev.Interface(f.Key, redact(f))
	}

	ev.Msg(msg)
}

func redact(f Field) any {
	if isRedactedField(f.Key) {
		return "[REDACTED]"
	}
	return f.Value
}

// redactedKeys are matched case-insensitively against field keys.
var redactedKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"api_key",
	"credential",
	"dsn",
	"uri",
}

func isRedactedField(key string) bool {
	for _, k := range redactedKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

type noopLogger struct{}

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (noopLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (noopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (l noopLogger) With(fields ...Field) Logger                          { return l }
