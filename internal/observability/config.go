package observability

import (
	"veracity/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "veracity",
			ServiceVersion: version,
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(nil),
		}
	}

	obs := cfg.Observability
	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	sampleRate := obs.SampleRate
	if obs.Tracing.Enabled && obs.Tracing.SampleRate > 0 {
		sampleRate = obs.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:     obs.ServiceName,
		ServiceVersion:  serviceVersion,
		ServiceInstance: obs.ServiceInstance,
		Enabled:         obs.Enabled,
		ConsoleOutput:   obs.ConsoleOutput,
		PrettyPrint:     obs.Console.PrettyPrint,
		SampleRate:      sampleRate,
		Prometheus:      GetPrometheusConfig(cfg),
	}
}

// customMetricsSettings returns the metric switches, all on when no config is available
func customMetricsSettings(cfg *config.Config) config.CustomMetricsConfig {
	if cfg != nil {
		return cfg.Observability.CustomMetrics
	}
	return config.CustomMetricsConfig{
		Classifier:     config.ClassifierMetricsConfig{Enabled: true, TrackDuration: true, TrackFallbacks: true, TrackCacheHits: true},
		Analysis:       config.AnalysisMetricsConfig{Enabled: true, TrackScores: true, TrackStepFailures: true, TrackContentSizes: true},
		Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true, TrackCertExpiry: true},
	}
}
