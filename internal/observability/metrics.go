package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"veracity/internal/config"
	"veracity/internal/types"
)

// Metrics holds all custom metrics for the analysis service
type Metrics struct {
	settings config.CustomMetricsConfig

	// Classifier metrics
	ClassifierDuration  metric.Float64Histogram
	ClassifierRequests  metric.Int64Counter
	ClassifierErrors    metric.Int64Counter
	ClassifierFallbacks metric.Int64Counter
	ClassifierCacheHits metric.Int64Counter

	// Analysis metrics
	ResumesAnalyzed metric.Int64Counter
	JobsAnalyzed    metric.Int64Counter
	TrustScores     metric.Float64Histogram
	AIProbabilities metric.Float64Histogram
	StepFailures    metric.Int64Counter
	ContentSize     metric.Int64Histogram

	// Certificate metrics
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// newMetrics returns metrics on meter, or no-op metrics when meter is nil
func newMetrics(meter metric.Meter, settings config.CustomMetricsConfig) *Metrics {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("veracity")
	}
	m, err := createMetrics(meter, settings)
	if err != nil {
		m, _ = createMetrics(noop.NewMeterProvider().Meter("veracity"), settings)
	}
	return m
}

// NoopMetrics returns metrics that record nothing
func NoopMetrics() *Metrics {
	return newMetrics(nil, customMetricsSettings(nil))
}

func createMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}
	var err error

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.ClassifierRequests, "veracity_classifier_requests_total", "Total number of classifier calls"},
		{&m.ClassifierErrors, "veracity_classifier_errors_total", "Total number of failed classifier calls"},
		{&m.ClassifierFallbacks, "veracity_classifier_fallbacks_total", "Total number of zero-shot fallbacks"},
		{&m.ClassifierCacheHits, "veracity_classifier_cache_hits_total", "Total number of classifier cache hits"},
		{&m.ResumesAnalyzed, "veracity_resumes_analyzed_total", "Total number of résumés analyzed"},
		{&m.JobsAnalyzed, "veracity_jobs_analyzed_total", "Total number of job postings analyzed"},
		{&m.StepFailures, "veracity_analysis_step_failures_total", "Total number of failed job analysis steps"},
		{&m.CertReloadCount, "veracity_cert_reloads_total", "Total number of certificate reloads"},
		{&m.RateLimitHits, "veracity_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
	}

	if m.ClassifierDuration, err = meter.Float64Histogram(
		"veracity_classifier_duration_seconds",
		metric.WithDescription("Time spent in classifier calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create classifier duration metric: %w", err)
	}

	if m.TrustScores, err = meter.Float64Histogram(
		"veracity_trust_score",
		metric.WithDescription("Overall trust scores by analysis type"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 80, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create trust score metric: %w", err)
	}

	if m.AIProbabilities, err = meter.Float64Histogram(
		"veracity_ai_probability",
		metric.WithDescription("Final AI-generation probability of analyzed résumés"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 80, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI probability metric: %w", err)
	}

	if m.ContentSize, err = meter.Int64Histogram(
		"veracity_content_size_bytes",
		metric.WithDescription("Size of analyzed text"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create content size metric: %w", err)
	}

	if m.CertExpiryTime, err = meter.Float64Gauge(
		"veracity_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create certificate expiry metric: %w", err)
	}

	return m, nil
}

// ClassificationCompleted records one classifier call
func (m *Metrics) ClassificationCompleted(ctx context.Context, provider, method string, duration time.Duration, err error) {
	cfg := m.settings.Classifier
	if !cfg.Enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("method", method),
		attribute.Bool("success", err == nil),
	)
	m.ClassifierRequests.Add(ctx, 1, attrs)
	if err != nil {
		m.ClassifierErrors.Add(ctx, 1, attrs)
	}
	if cfg.TrackDuration {
		m.ClassifierDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// CacheHit records a classification served from cache
func (m *Metrics) CacheHit(ctx context.Context, provider string) {
	if m.settings.Classifier.Enabled && m.settings.Classifier.TrackCacheHits {
		m.ClassifierCacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
	}
}

// FallbackUsed records a switch to the zero-shot model
func (m *Metrics) FallbackUsed(ctx context.Context, provider string) {
	if m.settings.Classifier.Enabled && m.settings.Classifier.TrackFallbacks {
		m.ClassifierFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
	}
}

// RecordResumeAnalysis records a finished résumé analysis
func (m *Metrics) RecordResumeAnalysis(ctx context.Context, result *types.ResumeAnalysisResult, contentSize int, err error) {
	cfg := m.settings.Analysis
	if !cfg.Enabled {
		return
	}
	kind := attribute.String("analysis_type", string(types.AnalysisTypeResume))
	m.ResumesAnalyzed.Add(ctx, 1, metric.WithAttributes(kind, attribute.Bool("success", err == nil)))
	if cfg.TrackContentSizes {
		m.ContentSize.Record(ctx, int64(contentSize), metric.WithAttributes(kind))
	}
	if err != nil || result == nil || !cfg.TrackScores {
		return
	}
	m.TrustScores.Record(ctx, result.TrustScore.OverallTrustScore, metric.WithAttributes(
		kind, attribute.String("trust_level", result.TrustScore.TrustLevel)))
	m.AIProbabilities.Record(ctx, result.Analysis.AIProbability, metric.WithAttributes(
		attribute.Bool("ai_enhanced", result.Analysis.AIEnhanced)))
}

// RecordJobAnalysis records a finished job analysis and its failed steps
func (m *Metrics) RecordJobAnalysis(ctx context.Context, result *types.JobAnalysisResult, contentSize int, err error) {
	cfg := m.settings.Analysis
	if !cfg.Enabled {
		return
	}
	kind := attribute.String("analysis_type", string(types.AnalysisTypeJob))
	m.JobsAnalyzed.Add(ctx, 1, metric.WithAttributes(kind, attribute.Bool("success", err == nil)))
	if cfg.TrackContentSizes {
		m.ContentSize.Record(ctx, int64(contentSize), metric.WithAttributes(kind))
	}
	if err != nil || result == nil {
		return
	}
	if cfg.TrackScores {
		m.TrustScores.Record(ctx, result.TrustScore.OverallTrustScore, metric.WithAttributes(
			kind, attribute.String("trust_level", result.TrustScore.TrustLevel)))
	}
	if !cfg.TrackStepFailures {
		return
	}
	d := result.ProcessingDetails
	steps := []struct {
		name string
		ok   bool
	}{
		{"content_analysis", d.ContentAnalysisSuccessful},
		{"company_verification", d.CompanyVerificationSuccessful},
		{"web_intelligence", d.WebIntelligenceSuccessful},
		{"trust_calculation", d.TrustCalculationSuccessful},
	}
	for _, s := range steps {
		if !s.ok {
			m.StepFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("step", s.name)))
		}
	}
}

// RecordRateLimitHit records a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, clientKind string) {
	if m.settings.Infrastructure.Enabled && m.settings.Infrastructure.TrackRateLimits {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("client", clientKind)))
	}
}

// RecordCertReload records a certificate reload
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m.settings.Infrastructure.Enabled {
		m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

// RecordCertExpiry records the time left before a certificate expires
func (m *Metrics) RecordCertExpiry(ctx context.Context, subject string, notAfter time.Time) {
	if m.settings.Infrastructure.Enabled && m.settings.Infrastructure.TrackCertExpiry {
		m.CertExpiryTime.Record(ctx, time.Until(notAfter).Seconds(),
			metric.WithAttributes(attribute.String("subject", subject)))
	}
}
