package ensemble

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"veracity/internal/analysis"
	"veracity/internal/errors"
	"veracity/internal/types"
)

const defaultClassifierTimeout = 30 * time.Second

// Classifier is the I/O contract of the external AI-text classifier
type Classifier interface {
	Classify(ctx context.Context, text string) (*types.Classification, error)
}

// Analyzer runs rule-based analysis and the optional classifier, then fuses them
type Analyzer struct {
	rules             *analysis.Analyzer
	classifier        Classifier
	timeout           time.Duration
	weights           Weights
	unavailableReason string
	logger            *errors.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithClassifier enables the classifier. Each call is bounded by timeout.
func WithClassifier(c Classifier, timeout time.Duration) Option {
	return func(a *Analyzer) {
		a.classifier = c
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithUnavailableReason sets the fallback reason reported when no classifier is configured
func WithUnavailableReason(reason string) Option {
	return func(a *Analyzer) {
		if reason != "" {
			a.unavailableReason = reason
		}
	}
}

func WithLogger(logger *errors.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an ensemble analyzer. Invalid weights are an
// InvalidConfiguration error.
func NewAnalyzer(rules *analysis.Analyzer, weights Weights, opts ...Option) (*Analyzer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = analysis.NewAnalyzer(nil, nil)
	}
	a := &Analyzer{
		rules:             rules,
		timeout:           defaultClassifierTimeout,
		weights:           weights,
		unavailableReason: ReasonDisabled,
		logger:            errors.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Detection is the rule-based result and its fusion with the classifier
type Detection struct {
	Rule            *analysis.Result
	Fusion          Fusion
	ConfidenceLevel string
}

// Detect runs the rule-based analysis and the classifier side by side and
// fuses the two. Classifier problems degrade to rule-only scoring; only
// empty input and cancellation are returned as errors.
func (a *Analyzer) Detect(ctx context.Context, text string) (*Detection, error) {
	if err := analysis.ValidateText(text); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("veracity.ensemble").Start(ctx, "ensemble.detect")
	defer span.End()
	span.SetAttributes(attribute.Int("input.length", len(text)))

	classifyCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	outcomes := make(chan Outcome, 1)
	go func() {
		outcomes <- a.classify(classifyCtx, text)
	}()

	rule, err := a.rules.Analyze(ctx, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var outcome Outcome
	select {
	case outcome = <-outcomes:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fusion := Fuse(rule.Score.Probability, outcome, a.weights)
	span.SetAttributes(
		attribute.Float64("score.rule", fusion.RuleProbability),
		attribute.Float64("score.fused", fusion.Probability),
		attribute.Bool("ai_enhanced", fusion.AIEnhanced),
	)

	return &Detection{
		Rule:            rule,
		Fusion:          fusion,
		ConfidenceLevel: a.rules.Lexicon().Thresholds().Bucket(fusion.Probability),
	}, nil
}

// Analyze produces the full résumé analysis for text
func (a *Analyzer) Analyze(ctx context.Context, text string) (*types.ResumeAnalysis, error) {
	d, err := a.Detect(ctx, text)
	if err != nil {
		return nil, err
	}

	method := types.AnalysisMethodRuleBased
	if d.Fusion.AIEnhanced {
		method = types.AnalysisMethodEnsemble
	}

	return &types.ResumeAnalysis{
		AIProbability:        d.Fusion.Probability,
		ConfidenceLevel:      d.ConfidenceLevel,
		OverallConfidence:    OverallConfidence(d.Fusion),
		TextStatistics:       d.Rule.TextStatistics,
		AIPatterns:           d.Rule.Patterns,
		KeywordAnalysis:      d.Rule.Keywords,
		SuspiciousSections:   d.Rule.SuspiciousSections,
		Recommendations:      Recommendations(d.Fusion),
		AnalysisMethod:       method,
		AIEnhanced:           d.Fusion.AIEnhanced,
		RuleBasedProbability: d.Fusion.RuleProbability,
		ProcessingDetails:    d.Fusion.Details,
		EnsembleInsights:     d.Fusion.Insights,
	}, nil
}

// classify asks the classifier for a score within the configured timeout.
// Every failure becomes a Failure outcome.
func (a *Analyzer) classify(ctx context.Context, text string) Outcome {
	if a.classifier == nil {
		return Failure{Reason: a.unavailableReason}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.classifier.Classify(callCtx, text)
	if err == nil && result == nil {
		err = fmt.Errorf("classifier returned no result")
	}
	if err != nil {
		reason := fmt.Sprintf("%s: %v", ReasonClassifierFailed, err)
		if ctx.Err() == nil && stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
			reason = fmt.Sprintf("AI service timeout after %s", a.timeout)
		}
		a.logger.LogError(errors.NewAIServiceUnavailable(reason, err),
			"Classifier unavailable, using rule-based score")
		return Failure{Reason: reason, Attempted: true}
	}

	a.logger.Debug("Classifier call succeeded",
		"model", result.Model,
		"ai_probability", result.AIProbability,
		"cached", result.Cached)
	return Success{Score: result.AIProbability, Model: result.Model, Confidence: result.Confidence}
}
