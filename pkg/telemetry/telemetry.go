package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/pkg/config"
	"github.com/inkwell/inkwell/pkg/logging"
)

const (
	instrumentationName = "github.com/inkwell/inkwell"
	serviceVersion      = "0.1.0"
	shutdownTimeout     = 5 * time.Second
)

var tracer trace.Tracer

type shutdownFunc func(context.Context) error

// Init installs the tracer and meter providers described by cfg and creates
// the blog's event counters on them. The counters record nothing when
// telemetry is disabled. The returned func flushes and stops the exporters.
func Init(cfg *config.TelemetryConfig) (*Counters, func(), error) {
	logger := logging.WithComponent("telemetry")
	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		counters, err := NewCounters()
		return counters, func() {}, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var stops []shutdownFunc
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, stop := range stops {
			if err := stop(ctx); err != nil {
				logger.Error("Error shutting down telemetry", zap.Error(err))
			}
		}
	}

	if cfg.JaegerURL != "" {
		tp, err := newTracerProvider(cfg.JaegerURL, res)
		if err != nil {
			return nil, nil, err
		}
		otel.SetTracerProvider(tp)
		stops = append(stops, tp.Shutdown)
		logger.Info("Jaeger exporter initialized", zap.String("url", cfg.JaegerURL))
	}

	// Registers with the default Prometheus registry served on /metrics.
	if cfg.PrometheusEnabled {
		mp, err := newMeterProvider(res)
		if err != nil {
			shutdown()
			return nil, nil, err
		}
		otel.SetMeterProvider(mp)
		stops = append(stops, mp.Shutdown)
		logger.Info("Prometheus exporter initialized")
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracer = otel.Tracer(cfg.ServiceName)

	counters, err := NewCounters()
	if err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("failed to create counters: %w", err)
	}
	return counters, shutdown, nil
}

func newTracerProvider(collectorURL string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorURL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(res *resource.Resource) (*metric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	return metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	), nil
}

// Tracer returns the service tracer, or a no-op one before Init
func Tracer() trace.Tracer {
	if tracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return tracer
}

// StartSpan starts a new span
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}
