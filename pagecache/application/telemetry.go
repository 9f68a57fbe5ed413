package application

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "pagegen-server/pagecache"

var (
	meter = otel.Meter(instrumentationName)
)

var (
	// regenerations conta regenerações que chegaram a chamar o gerador, por outcome.
	regenerations, _ = meter.Int64Counter("pagegen.regenerations")

	// skippedTriggers conta triggers que viram o guard ocupado ou foram recusados pelo pacer.
	skippedTriggers, _ = meter.Int64Counter("pagegen.triggers.skipped")

	generationDuration, _ = meter.Float64Histogram("pagegen.generation.duration",
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2, 5, 10, 20, 30, 60, 120))
)
