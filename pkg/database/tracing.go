package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/database"

type slowCommandConfig struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowCommands atomic.Pointer[slowCommandConfig]

// SetSlowCommandLogging warns on logger about commands taking at least
// threshold. A zero threshold or nil logger turns it off.
func SetSlowCommandLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowCommands.Store(nil)
		return
	}
	slowCommands.Store(&slowCommandConfig{threshold: threshold, logger: logger})
}

// TraceCommand opens a client span around one Redis command. Call the
// returned func with the command's error:
//
//	ctx, end := database.TraceCommand(ctx, "GET", key)
//	defer func() { end(err) }()
func TraceCommand(ctx context.Context, command, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis."+command,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", command),
			attribute.String("db.redis.key", key),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		cfg := slowCommands.Load()
		if cfg == nil {
			return
		}
		elapsed := time.Since(start)
		if elapsed < cfg.threshold {
			return
		}
		attrs := []any{
			slog.String("command", command),
			slog.String("key", key),
			slog.Duration("duration", elapsed),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		cfg.logger.WarnContext(ctx, "slow redis command", attrs...)
	}
}
