package config

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var loadEvents struct {
	once    sync.Once
	counter metric.Int64Counter
}

// recordConfigValidationEvent counts one configuration load attempt.
// The error class separates operator mistakes (validation) from
// malformed env values (parse) on dashboards.
func recordConfigValidationEvent(ctx context.Context, profile, outcome, errorClass string) {
	loadEvents.once.Do(func() {
		counter, err := otel.Meter("mamatrack-api").Int64Counter("config.load.events")
		if err != nil {
			return
		}
		loadEvents.counter = counter
	})
	if loadEvents.counter == nil {
		return
	}
	loadEvents.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", normalizeConfigProfile(profile)),
		attribute.String("outcome", outcome),
		attribute.String("error_class", errorClass),
	))
}

func normalizeConfigProfile(profile string) string {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		return "unknown"
	}
	return profile
}

// classifyConfigLoadError buckets load failures by the error prefixes
// Load attaches, so the class never carries env values.
func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "validate config:") {
		return "validation"
	}
	if strings.Contains(msg, "parse ") {
		return "parse"
	}
	return "load"
}
