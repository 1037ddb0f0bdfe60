package monitoring

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce sync.Once

	searchCounter  metric.Int64Counter
	geocodeCounter metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter("fixmarket")

	searchCounter, _ = meter.Int64Counter("fixmarket.search.requests",
		metric.WithDescription("Offer search requests by ordering mode"))
	geocodeCounter, _ = meter.Int64Counter("fixmarket.geocode.lookups",
		metric.WithDescription("External geocoder lookups by outcome"))
}

// RecordSearch counts a search request. mode is "proximity" or "newest".
func RecordSearch(ctx context.Context, mode string) {
	metricsOnce.Do(initMetrics)
	if searchCounter != nil {
		searchCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	}
}

// RecordGeocode counts a geocoder lookup. outcome is "found", "no_match" or
// "failed".
func RecordGeocode(ctx context.Context, outcome string) {
	metricsOnce.Do(initMetrics)
	if geocodeCounter != nil {
		geocodeCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
