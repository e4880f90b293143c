package observability

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"promptforge/internal/config"
)

const metricExportInterval = 30 * time.Second

// Setup installs the global tracer and meter providers and the W3C
// propagator. With no OTLP endpoint configured spans are still created, so
// trace ids reach logs and error bodies, but nothing is exported.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceNamespace(cfg.ServiceNamespace),
			semconv.ServiceVersion(config.Version),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.OTLPEndpoint != "" {
		endpoint, insecure := splitEndpoint(cfg.OTLPEndpoint)
		headers := parseHeaders(cfg.OTLPHeaders)

		traceExporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		metricExporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
		if insecure {
			traceExporterOpts = append(traceExporterOpts, otlptracehttp.WithInsecure())
			metricExporterOpts = append(metricExporterOpts, otlpmetrichttp.WithInsecure())
		}
		if len(headers) > 0 {
			traceExporterOpts = append(traceExporterOpts, otlptracehttp.WithHeaders(headers))
			metricExporterOpts = append(metricExporterOpts, otlpmetrichttp.WithHeaders(headers))
		}

		traceExporter, err := otlptracehttp.New(ctx, traceExporterOpts...)
		if err != nil {
			return nil, err
		}
		metricExporter, err := otlpmetrichttp.New(ctx, metricExporterOpts...)
		if err != nil {
			return nil, err
		}

		traceOpts = append(traceOpts, sdktrace.WithBatcher(traceExporter))
		meterOpts = append(meterOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval)),
		))
		log.Info().Str("endpoint", endpoint).Bool("insecure", insecure).Msg("exporting telemetry over OTLP")
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	meterProvider := sdkmetric.NewMeterProvider(meterOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		var result *multierror.Error
		if err := meterProvider.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		if err := result.ErrorOrNil(); err != nil {
			log.Error().Err(err).Msg("telemetry shutdown failed")
			return err
		}
		return nil
	}
	return shutdown, nil
}

// splitEndpoint accepts "collector:4318" or a full http(s) URL and returns
// the host:port the exporters expect. Plain http and bare hosts are insecure.
func splitEndpoint(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "https://"); ok {
		return strings.TrimSuffix(rest, "/"), false
	}
	rest, _ := strings.CutPrefix(raw, "http://")
	return strings.TrimSuffix(rest, "/"), true
}

// parseHeaders reads OTEL_EXPORTER_OTLP_HEADERS style "k1=v1,k2=v2".
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if ok && key != "" && value != "" {
			headers[key] = value
		}
	}
	return headers
}
