// Package logger is the structured zap logger shared by every layer.
// Request-scoped fields travel in context.Context and are attached on each call.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "quickinvoice/internal/core/context"
)

// Logger is a zap SugaredLogger that knows how to read request context.
type Logger struct {
	*zap.SugaredLogger
}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Development bool   // colored console output instead of JSON

	// Version is attached to every entry next to service=quickinvoice.
	Version string

	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// New builds a Logger. An unknown level falls back to info rather than failing startup.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	fields := []zap.Field{zap.String("service", "quickinvoice")}
	if cfg.Version != "" {
		fields = append(fields, zap.String("version", cfg.Version))
	}

	z, err := zc.Build(zap.AddCallerSkip(1), zap.Fields(fields...))
	if err != nil {
		return nil, err
	}
	return NewFromZap(z), nil
}

// NewFromZap wraps an existing zap logger; tests pass observer cores.
func NewFromZap(z *zap.Logger) *Logger {
	return &Logger{z.Sugar()}
}

var fallback = sync.OnceValue(func() *Logger {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stdout"}
	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	return NewFromZap(z)
})

// Default is used when no logger was placed in the context.
func Default() *Logger {
	return fallback()
}

// WithContext attaches trace, request and seller ids found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var kv []any
	if trace := appctx.GetTrace(ctx); trace != nil {
		kv = append(kv, "trace_id", trace.TraceID, "request_id", trace.RequestID)
	}
	if sellerID := appctx.GetSellerID(ctx); sellerID != "" {
		kv = append(kv, "seller_id", sellerID)
	}
	if len(kv) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(kv...)}
}

// WithComponent tags entries with the emitting subsystem.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With("component", name)}
}

type ctxKey struct{}

// WithLogger stores l in ctx for the package-level helpers.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the context logger, or Default, enriched from ctx.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(ctxKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

func Debug(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Debugw(msg, kv...) }
func Info(ctx context.Context, msg string, kv ...any)  { FromContext(ctx).Infow(msg, kv...) }
func Warn(ctx context.Context, msg string, kv ...any)  { FromContext(ctx).Warnw(msg, kv...) }
func Error(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Errorw(msg, kv...) }
