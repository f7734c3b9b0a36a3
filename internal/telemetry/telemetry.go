package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const Version = "0.1.0"

func newFileExporter(w io.Writer) (trace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
}

// newCollectorExporter creates an exporter that sends traces to an OTEL collector
func newCollectorExporter(endpoint string) (trace.SpanExporter, error) {
	host := strings.TrimPrefix(endpoint, "http://")
	host = strings.TrimPrefix(host, "https://")

	return otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(host),
	)
}

func newResource(serviceName string) *resource.Resource {
	if serviceName == "" {
		serviceName = "taskdesk"
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(Version),
	)
}

// NewProvider creates a tracer provider and installs it as the global one.
//
// When endpoint is set (OTEL_EXPORTER_OTLP_ENDPOINT, e.g. "localhost:4318")
// spans go to that collector, otherwise they are pretty-printed into traceFile.
//
// Returns a teardown func
func NewProvider(serviceName, endpoint, traceFile string) func() {
	var (
		exp  trace.SpanExporter
		file *os.File
		err  error
	)

	if endpoint != "" {
		exp, err = newCollectorExporter(endpoint)
	} else {
		file, err = os.Create(traceFile)
		if err != nil {
			slog.Error("Unable to create trace file", slog.String("path", traceFile), slog.Any("error", err))
			return func() {}
		}
		slog.Info("Using file-based tracing", slog.String("path", traceFile))
		exp, err = newFileExporter(file)
	}

	if err != nil {
		slog.Error("Unable to create exporter", slog.Any("error", err))
		return func() {}
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(newResource(serviceName)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error("unable to shutdown trace provider", slog.Any("error", err))
		}

		if file != nil {
			if err := file.Close(); err != nil {
				slog.Error("Unable to close trace file", slog.Any("error", err))
			}
		}
	}
}
