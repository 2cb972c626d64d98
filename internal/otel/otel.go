// Package otel wires the runtime's network lifecycle events into
// OpenTelemetry traces: one span per network request, tagged with the
// request correlation id and the artifact being fetched.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/graphcache/internal/eventbus"
	events "github.com/hanpama/graphcache/internal/events"
	reqid "github.com/hanpama/graphcache/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("graphcache")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer       trace.Tracer
	requestSpans sync.Map // rid -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.MakeNetworkRequest) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphcache.network_request")
		span.SetAttributes(
			attribute.String("graphcache.artifact", e.ArtifactID),
			attribute.String("graphcache.request_id", rid),
		)
		s.requestSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ReceivedNetworkResponse) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.requestSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetStatus(codes.Ok, "")
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ReceivedNetworkError) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.requestSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
		span.End()
	})
}
