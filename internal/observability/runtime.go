package observability

import (
	"context"
	"errors"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mamatrack/mamatrack-api/internal/config"
)

// Runtime owns the metric and trace providers so pending telemetry can
// be flushed from one place during shutdown.
type Runtime struct {
	meters  *sdkmetric.MeterProvider
	tracers *sdktrace.TracerProvider
}

// InitRuntime starts both providers. Disabled exporters still yield
// working no-op providers, callers never need to nil-check.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	meters, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tracers, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, meters.Shutdown(ctx))
	}
	return &Runtime{meters: meters, tracers: tracers}, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return errors.Join(r.meters.Shutdown(ctx), r.tracers.Shutdown(ctx))
}
