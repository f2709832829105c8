// Package observability wires OpenTelemetry tracing and metrics for the
// analysis service, with console, OTLP and Prometheus exporters.
package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"veracity/internal/config"
	"veracity/internal/errors"
)

const defaultCollectionInterval = 15 * time.Second

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	ConsoleOutput   bool
	PrettyPrint     bool
	SampleRate      float64
	Prometheus      PrometheusConfig
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config
	resource         *resource.Resource
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.Server
	logger           *errors.Logger
}

// NewObservabilityManager creates a new observability manager. A disabled
// manager hands out no-op tracers and metrics.
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config, logger *errors.Logger) (*ObservabilityManager, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	om := &ObservabilityManager{
		config:     obsConfig,
		fullConfig: fullConfig,
		logger:     logger,
	}
	if !obsConfig.Enabled {
		om.metrics = newMetrics(nil, customMetricsSettings(fullConfig))
		return om, nil
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("Observability initialized",
		"service", obsConfig.ServiceName,
		"instance", obsConfig.ServiceInstance,
		"console", obsConfig.ConsoleOutput,
		"prometheus", obsConfig.Prometheus.Enabled,
		"otlp", om.otlpEnabled())
	return om, nil
}

// initResource creates the resource shared by traces and metrics
func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.serviceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.otlpEnabled():
		exporter, err = om.createOTLPExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	metrics, err := createMetrics(mp.Meter(om.config.ServiceName), customMetricsSettings(om.fullConfig))
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.metricsCollectionInterval())))
	}

	if om.otlpEnabled() {
		reader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, reader)
		om.prometheusServer = StartPrometheusServer(mux, om.config.Prometheus.Port, om.logger)
		om.shutdownFuncs = append(om.shutdownFuncs, om.prometheusServer.Shutdown)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// GetMetrics returns the metrics instance. It is never nil.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return NoopMetrics()
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes exporters and stops the Prometheus server. Every
// component is shut down even when an earlier one fails.
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(om.shutdownFuncs) - 1; i >= 0; i-- {
		if err := om.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error                          { return nil }

func (om *ObservabilityManager) otlpEnabled() bool {
	return om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlpConfig.Endpoint)}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint)}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.metricsCollectionInterval())), nil
}

func (om *ObservabilityManager) serviceInstanceID() string {
	if om.config.ServiceInstance != "" {
		return om.config.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

func (om *ObservabilityManager) metricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return defaultCollectionInterval
}
