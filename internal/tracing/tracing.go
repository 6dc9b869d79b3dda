// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package tracing configures the OpenTelemetry trace exporter for the
// transcript pipeline binaries.
package tracing

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitTracerProvider sets up the global tracer provider with an OTLP gRPC
// exporter. When no collector endpoint is configured the provider is left as
// the default no-op and spans cost nothing.
//
// The returned function flushes and shuts down the provider; call it during
// graceful shutdown.
func InitTracerProvider(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		slog.InfoContext(ctx, "OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return noop, nil
	}

	// The exporter reads the endpoint and TLS settings from the standard
	// OTEL_EXPORTER_OTLP_* environment variables.
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return noop, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.InfoContext(ctx, "tracing enabled", "service", serviceName)

	return provider.Shutdown, nil
}
