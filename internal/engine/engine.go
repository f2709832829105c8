// Package engine assembles the résumé and job-posting analysis pipelines from
// configuration and runs them with tracing and metrics.
package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"veracity/internal/ai"
	"veracity/internal/analysis"
	"veracity/internal/config"
	"veracity/internal/ensemble"
	"veracity/internal/errors"
	"veracity/internal/jobs"
	"veracity/internal/lexicon"
	"veracity/internal/observability"
	"veracity/internal/trust"
	"veracity/internal/types"
)

// Overall service states reported by health checks
const (
	StatusAIEnhanced       = "fully_operational_ai_enhanced"
	StatusRuleBasedOnly    = "operational_rule_based_fallback"
	tracerName             = "veracity.engine"
	defaultHealthCheckWait = 10 * time.Second
)

// Option configures an Engine
type Option func(*options)

type options struct {
	metrics      *observability.Metrics
	jobOptions   []jobs.Option
	providerOpts []ai.ProviderOption
}

// WithMetrics records analyses and classifier calls on m
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithJobOptions passes resolver and HTTP client overrides to the job pipeline
func WithJobOptions(opts ...jobs.Option) Option {
	return func(o *options) { o.jobOptions = append(o.jobOptions, opts...) }
}

// WithProviderOptions passes extra options to the classifier backend
func WithProviderOptions(opts ...ai.ProviderOption) Option {
	return func(o *options) { o.providerOpts = append(o.providerOpts, opts...) }
}

// Engine runs both analysis tracks against one shared classifier
type Engine struct {
	classifier *ai.Service
	resume     *ensemble.Analyzer
	trust      *trust.ResumeCalculator
	jobs       *jobs.Analyzer
	metrics    *observability.Metrics
	logger     *errors.Logger
	healthWait time.Duration
	now        func() time.Time
}

// New builds the engine described by cfg. Configuration problems are
// InvalidConfiguration errors; an unavailable classifier is not an error.
func New(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observability.NoopMetrics()
	}

	lex, err := lexicon.Load(cfg.Scoring.LexiconFile)
	if err != nil {
		return nil, err
	}

	providerOpts := append([]ai.ProviderOption{ai.WithObserver(o.metrics)}, o.providerOpts...)
	if t := cfg.Observability.HealthCheck.ClassifierCheckTimeout; t > 0 {
		providerOpts = append(providerOpts, ai.WithModelCheckTimeout(t))
	}
	service, err := ai.NewService(ctx, cfg.Classifier, logger, providerOpts...)
	if err != nil {
		return nil, err
	}

	ensembleOpts := append(service.EnsembleOptions(), ensemble.WithLogger(logger))
	weights := ensemble.Weights{AI: cfg.Ensemble.AIWeight, Rule: cfg.Ensemble.RuleWeight}
	detector, err := ensemble.NewAnalyzer(analysis.NewAnalyzer(lex, logger), weights, ensembleOpts...)
	if err != nil {
		_ = service.Close()
		return nil, err
	}

	jobAnalyzer, err := jobs.NewAnalyzer(detector, jobSettings(cfg.Jobs), logger, o.jobOptions...)
	if err != nil {
		_ = service.Close()
		return nil, err
	}

	healthWait := cfg.Observability.HealthCheck.Timeout
	if healthWait <= 0 {
		healthWait = defaultHealthCheckWait
	}

	return &Engine{
		classifier: service,
		resume:     detector,
		trust:      trust.NewResumeCalculator(cfg.Scoring.PatternThreshold),
		jobs:       jobAnalyzer,
		metrics:    o.metrics,
		logger:     logger,
		healthWait: healthWait,
		now:        time.Now,
	}, nil
}

func jobSettings(cfg config.JobsConfig) jobs.Settings {
	return jobs.Settings{
		CompanyVerificationEnabled: cfg.CompanyVerificationEnabled,
		WebIntelligenceEnabled:     cfg.WebIntelligenceEnabled,
		Options: jobs.Options{
			RequestTimeout: cfg.RequestTimeout,
			UserAgent:      cfg.UserAgent,
			MaxRedirects:   cfg.MaxRedirects,
			RDAPURL:        cfg.RDAPURL,
		},
		Weights: cfg.TrustWeights,
	}
}

// AnalyzeResume scores one résumé. Empty text is an EmptyInputError; a
// failing classifier only downgrades the result to rule-based.
func (e *Engine) AnalyzeResume(ctx context.Context, text string, file *types.FileInfo) (*types.ResumeAnalysisResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "engine.analyze_resume")
	defer span.End()

	start := e.now()
	result, err := e.analyzeResume(ctx, text, file, start)
	e.metrics.RecordResumeAnalysis(ctx, result, len(text), err)
	if err != nil {
		span.RecordError(err)
		e.logger.LogError(err, "Résumé analysis failed", "text_length", len(text))
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("trust.score", result.TrustScore.OverallTrustScore),
		attribute.Bool("ai_enhanced", result.Analysis.AIEnhanced),
	)
	e.logger.Info("Résumé analysis completed",
		"ai_probability", result.Analysis.AIProbability,
		"trust_score", result.TrustScore.OverallTrustScore,
		"method", result.Analysis.AnalysisMethod,
		"duration", e.now().Sub(start))
	return result, nil
}

func (e *Engine) analyzeResume(ctx context.Context, text string, file *types.FileInfo, start time.Time) (*types.ResumeAnalysisResult, error) {
	a, err := e.resume.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	score := e.trust.Calculate(a)
	return types.NewResumeAnalysisResult(*a, score, file, start.UTC().Format(time.RFC3339)), nil
}

// AnalyzeJob verifies one job posting. Failed verification steps are
// reported inside the result.
func (e *Engine) AnalyzeJob(ctx context.Context, in jobs.Input) (*types.JobAnalysisResult, error) {
	result, err := e.jobs.Analyze(ctx, in)
	size := len(in.Text)
	if result != nil {
		size = len(result.JobContent.RawText)
	}
	e.metrics.RecordJobAnalysis(ctx, result, size, err)
	if err != nil {
		e.logger.LogError(err, "Job analysis failed", "has_url", in.URL != "")
		return nil, err
	}
	return result, nil
}

// Health probes the classifier within the configured health check timeout
func (e *Engine) Health(ctx context.Context) ai.Health {
	ctx, cancel := context.WithTimeout(ctx, e.healthWait)
	defer cancel()
	return e.classifier.Health(ctx)
}

// OverallStatus names the mode analyses currently run in
func (e *Engine) OverallStatus(h ai.Health) string {
	if h.ModelReady {
		return StatusAIEnhanced
	}
	return StatusRuleBasedOnly
}

// ClassifierEnabled reports whether a classifier backend was configured
func (e *Engine) ClassifierEnabled() bool {
	return e.classifier.Provider != nil
}

// CircuitBreakerStats returns the classifier breaker counters
func (e *Engine) CircuitBreakerStats() map[string]any {
	if e.classifier.Provider == nil {
		return map[string]any{"enabled": false, "reason": e.classifier.UnavailableReason()}
	}
	return e.classifier.Provider.CircuitBreakerStats()
}

// Close releases the classifier backend
func (e *Engine) Close() error {
	return e.classifier.Close()
}
