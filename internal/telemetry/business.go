package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessTracer provides utilities for tracing domain operations like
// forecast computation and evaluation runs.
type BusinessTracer struct {
	tracer trace.Tracer
}

// NewBusinessTracer creates a new instance of BusinessTracer.
//
// Returns:
//   - A pointer to an initialized BusinessTracer.
func NewBusinessTracer() *BusinessTracer {
	return &BusinessTracer{tracer: Tracer("weekcast/forecast")}
}

// TraceForecast starts a span covering the computation of a forecast for one
// series.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - slug: The series being forecast.
//   - points: The number of observations feeding the computation.
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceForecast(ctx context.Context, slug string, points int) (context.Context, trace.Span) {
	ctx, span := bt.tracer.Start(ctx, "forecast.compute",
		trace.WithAttributes(
			attribute.String("series.slug", slug),
			attribute.Int("series.points", points),
		),
	)
	return ctx, span
}

// RecordForecastParams adds the method parameters used for a computation to
// an existing span.
func (bt *BusinessTracer) RecordForecastParams(span trace.Span, window, period, horizon int) {
	span.SetAttributes(
		attribute.Int("forecast.window", window),
		attribute.Int("forecast.period", period),
		attribute.Int("forecast.horizon", horizon),
	)
}

// TraceEvaluation starts a span covering an accuracy evaluation run.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - slug: The series being evaluated.
//   - mode: The evaluation mode, rolling or holdout.
//   - metric: The accuracy metric being computed.
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceEvaluation(ctx context.Context, slug, mode, metric string) (context.Context, trace.Span) {
	ctx, span := bt.tracer.Start(ctx, "forecast.evaluate",
		trace.WithAttributes(
			attribute.String("series.slug", slug),
			attribute.String("evaluation.mode", mode),
			attribute.String("evaluation.metric", metric),
		),
	)
	return ctx, span
}

// RecordCacheResult marks whether the response came from the cache.
func (bt *BusinessTracer) RecordCacheResult(span trace.Span, hit bool) {
	span.SetAttributes(attribute.Bool("cache.hit", hit))
}

// EndWithError ends the span, recording err if non-nil.
func (bt *BusinessTracer) EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
