package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"

	"veracity/internal/config"
	"veracity/internal/errors"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter creates a Prometheus reader backed by its own
// registry and the mux that serves it
func SetupPrometheusExporter(cfg PrometheusConfig) (metric.Reader, *http.ServeMux, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return exporter, mux, nil
}

// StartPrometheusServer serves mux on a dedicated port in the background
func StartPrometheusServer(mux *http.ServeMux, port string, logger *errors.Logger) *http.Server {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Starting Prometheus metrics server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogError(err, "Prometheus server failed", "address", server.Addr)
		}
	}()
	return server
}

// GetPrometheusConfig creates Prometheus configuration from provided config
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg == nil {
		return PrometheusConfig{Endpoint: "/metrics", Port: "9090"}
	}
	return PrometheusConfig{
		Enabled:  cfg.Observability.Prometheus.Enabled,
		Endpoint: cfg.Observability.Prometheus.Endpoint,
		Port:     cfg.Observability.Prometheus.Port,
	}
}
