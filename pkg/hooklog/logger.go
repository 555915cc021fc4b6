// Package hooklog emits structured diagnostic logs for hookify components.
// Each record is one JSON object per line on a stream separate from primary
// program output (stderr by default), so hook decision JSON on stdout is
// never corrupted by diagnostics. Logging never panics and never returns
// errors to callers: a record whose context cannot be serialized is emitted
// in degraded form instead of being dropped.
package hooklog

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes records for a single named component. The component name is
// fixed at construction and the logger holds no other state, so one instance
// may be shared across goroutines without coordination. A nil *Logger is a
// no-op.
type Logger struct {
	z         *zap.Logger
	component string
}

type options struct {
	out   io.Writer
	level Level
}

// Option configures a Logger at construction time.
type Option func(*options)

// WithOutput redirects the diagnostic stream. The default is stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithLevel sets the minimum level that is emitted. The default is LevelDebug.
func WithLevel(l Level) Option {
	return func(o *options) { o.level = l }
}

// New builds a logger bound to one component name. An empty component is a
// caller error and is rejected.
func New(component string, opts ...Option) (*Logger, error) {
	if component == "" {
		return nil, fmt.Errorf("hooklog: component name required")
	}
	o := options{out: os.Stderr, level: LevelDebug}
	for _, opt := range opts {
		opt(&o)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(o.out)),
		o.level.zapLevel(),
	)
	return &Logger{z: zap.New(core).Named(component), component: component}, nil
}

// Must panics when New fails. Intended for loggers with fixed component
// names known at compile time.
func Must(l *Logger, err error) *Logger {
	if err != nil {
		panic(err)
	}
	return l
}

// Nop returns a logger that discards every record.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), component: "nop"}
}

// Component returns the name the logger was constructed with.
func (l *Logger) Component() string {
	if l == nil {
		return ""
	}
	return l.component
}

// Sync flushes the underlying stream. Safe to ignore for stderr.
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}

// Log emits one record. ctx and err may be nil; ctx entries are embedded
// under "context", err under "error" as {"type", "message"}. Emission is
// synchronous and in call order.
func (l *Logger) Log(level Level, msg string, ctx map[string]any, err error) {
	if l == nil || l.z == nil {
		return
	}
	fields := make([]zap.Field, 0, 2)
	if len(ctx) > 0 {
		fields = append(fields, zap.Any("context", ctx))
	}
	if err != nil {
		fields = append(fields, zap.Object("error", fault{err}))
	}
	switch level {
	case LevelDebug:
		l.z.Debug(msg, fields...)
	case LevelInfo:
		l.z.Info(msg, fields...)
	case LevelWarning:
		l.z.Warn(msg, fields...)
	case LevelError:
		l.z.Error(msg, fields...)
	case LevelCritical:
		l.z.DPanic(msg, fields...)
	default:
		l.z.Info(msg, fields...)
	}
}

// Debug logs a debug record.
func (l *Logger) Debug(msg string, ctx map[string]any) {
	l.Log(LevelDebug, msg, ctx, nil)
}

// Info logs an informational record.
func (l *Logger) Info(msg string, ctx map[string]any) {
	l.Log(LevelInfo, msg, ctx, nil)
}

// Warning logs an advisory record.
func (l *Logger) Warning(msg string, ctx map[string]any) {
	l.Log(LevelWarning, msg, ctx, nil)
}

// Error logs a failure record.
func (l *Logger) Error(msg string, ctx map[string]any, err error) {
	l.Log(LevelError, msg, ctx, err)
}

// Critical logs a record for failures the process cannot recover from.
// The record is still just emitted; the logger never terminates the caller.
func (l *Logger) Critical(msg string, ctx map[string]any, err error) {
	l.Log(LevelCritical, msg, ctx, err)
}

// fault renders an attached error as {"type": "<Go type>", "message": ...}.
type fault struct {
	err error
}

func (f fault) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", fmt.Sprintf("%T", f.err))
	enc.AddString("message", f.err.Error())
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// encodeLevel emits the five wire names. WARNING and CRITICAL differ from
// zapcore's own capital names.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.DPanicLevel:
		enc.AppendString("CRITICAL")
	default:
		enc.AppendString(l.CapitalString())
	}
}

// TimeLayout is the timestamp format on every emitted record: UTC with
// microsecond precision, e.g. 2026-03-14T09:26:53.589793Z. Sortable and
// unambiguous.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(TimeLayout))
}
