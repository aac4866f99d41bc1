package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"telegram-event-reminder/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger. Dev mode forces console output and disables sampling.
// Sampling only thins debug and info records; warnings and errors are always kept.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.DurationFieldUnit = time.Millisecond

	ctx := zerolog.New(writer(cfg.Format, dev)).With().Timestamp()
	if dev {
		ctx = ctx.Caller()
	}
	l := ctx.Logger()

	if cfg.Sampling && !dev {
		every := &zerolog.BasicSampler{N: 10}
		l = l.Sample(zerolog.LevelSampler{
			TraceSampler: every,
			DebugSampler: every,
			InfoSampler:  every,
		})
	}
	return &l
}

func writer(format string, dev bool) io.Writer {
	if dev || strings.EqualFold(format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}
	return os.Stdout
}

type ctxKey int

const (
	traceIDKey ctxKey = iota
	tgIDKey
	jobIDKey
)

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func WithTgID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, tgIDKey, id)
}

// WithJobID tags every record logged for a dispatch job with its id.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// With returns base enriched with the request/job ids stored in ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	c := base.With()
	if v, ok := ctx.Value(traceIDKey).(string); ok && v != "" {
		c = c.Str("trace_id", v)
	}
	if v, ok := ctx.Value(tgIDKey).(int64); ok {
		c = c.Int64("tg_id", v)
	}
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		c = c.Str("job_id", v)
	}
	l := c.Logger()
	return &l
}

// TraceDuration logs entry and exit of name at trace level.
//
//	defer logging.TraceDuration(logger, "BroadcastUC.Broadcast")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	if logger.GetLevel() > zerolog.TraceLevel || zerolog.GlobalLevel() > zerolog.TraceLevel {
		return func() {}
	}
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Redact keeps a short prefix and suffix of a secret for log correlation.
func Redact(s string, dev bool) string {
	if dev {
		return s
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-2:]
}
