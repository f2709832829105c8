package ensemble

import (
	"context"
	stderrors "errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"veracity/internal/errors"
	"veracity/internal/types"
)

const casualResume = "I fixed the bug. It was annoying. I grabbed coffee and tried again."

type fakeClassifier struct {
	result *types.Classification
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*types.Classification, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name        string
		weights     Weights
		expectError bool
	}{
		{"default", DefaultWeights(), false},
		{"rule only", Weights{AI: 0, Rule: 1}, false},
		{"over one", Weights{AI: 0.8, Rule: 0.3}, true},
		{"negative", Weights{AI: 1.2, Rule: -0.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.expectError && !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Expected InvalidConfiguration error, got %v", err)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestFuseFailureKeepsRuleScore(t *testing.T) {
	rule := 63.21987
	f := Fuse(rule, Failure{Reason: "boom", Attempted: true}, DefaultWeights())

	if f.Probability != rule {
		t.Errorf("Expected fused probability to equal rule score %v, got %v", rule, f.Probability)
	}
	if f.AIEnhanced {
		t.Error("Expected ai_enhanced to be false")
	}
	if f.Details.EnsembleMethod != types.EnsembleMethodRuleBased {
		t.Errorf("Expected %q, got %q", types.EnsembleMethodRuleBased, f.Details.EnsembleMethod)
	}
	if !f.Details.AIAnalysisAttempted || f.Details.AIAnalysisSuccessful {
		t.Errorf("Unexpected processing details: %+v", f.Details)
	}
	if f.Details.FallbackReason != "boom" {
		t.Errorf("Expected fallback reason to be recorded, got %q", f.Details.FallbackReason)
	}
	if f.Insights != nil {
		t.Error("Expected no ensemble insights without a classifier score")
	}
}

func TestFuseSuccess(t *testing.T) {
	f := Fuse(40, Success{Score: 80, Model: "detector", Confidence: 0.9}, DefaultWeights())

	if f.Probability != 68 {
		t.Errorf("Expected 0.7*80 + 0.3*40 = 68, got %v", f.Probability)
	}
	if !f.AIEnhanced || f.Details.EnsembleMethod != types.EnsembleMethodWeighted {
		t.Errorf("Expected weighted ensemble, got %+v", f.Details)
	}
	if f.Details.AIModelUsed != "detector" {
		t.Errorf("Expected model to be recorded, got %q", f.Details.AIModelUsed)
	}
	if f.Insights.MethodConsensus != "Weak" || f.Insights.ReliabilityIndicator != "Low" {
		t.Errorf("Expected weak consensus for a 40 point gap, got %+v", f.Insights)
	}
	// 90 classifier confidence against 40 for an uncertain rule score
	if f.Insights.ConfidenceBoost != 50 {
		t.Errorf("Expected confidence boost 50, got %v", f.Insights.ConfidenceBoost)
	}
}

func TestFuseIsIdempotent(t *testing.T) {
	outcomes := []Outcome{
		Success{Score: 12.5, Model: "m", Confidence: 0.4},
		Failure{Reason: "disabled"},
		nil,
	}
	for _, o := range outcomes {
		first := Fuse(55.5, o, DefaultWeights())
		second := Fuse(55.5, o, DefaultWeights())
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Expected identical fusions for %#v, got %+v and %+v", o, first, second)
		}
	}
}

func TestFuseBounds(t *testing.T) {
	for _, ai := range []float64{-50, 0, 50, 100, 250} {
		for _, rule := range []float64{0, 33.3, 100} {
			f := Fuse(rule, Success{Score: ai}, DefaultWeights())
			if f.Probability < 0 || f.Probability > 100 {
				t.Errorf("Fused probability out of range for ai=%v rule=%v: %v", ai, rule, f.Probability)
			}
		}
	}
}

func TestOverallConfidence(t *testing.T) {
	tests := []struct {
		name     string
		fusion   Fusion
		expected string
	}{
		{"rule extreme", Fusion{Probability: 10}, "High Confidence - Rule-based"},
		{"rule leaning", Fusion{Probability: 72}, "Medium Confidence - Rule-based"},
		{"rule uncertain", Fusion{Probability: 50}, "Low Confidence - Rule-based (Recommend AI retry)"},
		{"ai very high", Fusion{Probability: 90, AIEnhanced: true, Insights: &types.EnsembleInsights{ConfidenceBoost: 25}}, "Very High Confidence - AI Enhanced"},
		{"ai medium-high", Fusion{Probability: 50, AIEnhanced: true, Insights: &types.EnsembleInsights{ConfidenceBoost: 12}}, "Medium-High Confidence - AI Enhanced"},
		{"ai medium", Fusion{Probability: 50, AIEnhanced: true, Insights: &types.EnsembleInsights{}}, "Medium Confidence - AI Enhanced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallConfidence(tt.fusion); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRecommendations(t *testing.T) {
	critical := Recommendations(Fusion{Probability: 90})
	if !strings.HasPrefix(critical[0], "CRITICAL ALERT") {
		t.Errorf("Expected critical tier first, got %q", critical[0])
	}

	low := Recommendations(Fusion{Probability: 5})
	if !strings.HasPrefix(low[0], "LOW RISK") {
		t.Errorf("Expected low tier first, got %q", low[0])
	}

	fallback := Recommendations(Fuse(30, Failure{Reason: "timeout", Attempted: true}, DefaultWeights()))
	last := fallback[len(fallback)-1]
	if last != "Note: AI analysis unavailable (timeout) - using rule-based analysis" {
		t.Errorf("Expected fallback note last, got %q", last)
	}

	disabled := Recommendations(Fuse(30, Failure{Reason: ReasonDisabled}, DefaultWeights()))
	for _, r := range disabled {
		if strings.HasPrefix(r, "Note:") {
			t.Errorf("Expected no fallback note when the classifier was never called, got %q", r)
		}
	}

	agreed := Recommendations(Fuse(60, Success{Score: 65}, DefaultWeights()))
	if agreed[len(agreed)-1] != "Multiple detection methods agree - high reliability score" {
		t.Errorf("Expected consensus note last, got %q", agreed[len(agreed)-1])
	}
}

func TestAnalyzerWithoutClassifier(t *testing.T) {
	analyzer, err := NewAnalyzer(nil, DefaultWeights())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := analyzer.Analyze(context.Background(), casualResume)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.AIProbability != result.RuleBasedProbability {
		t.Errorf("Expected rule-only score, got %v vs %v", result.AIProbability, result.RuleBasedProbability)
	}
	if result.AnalysisMethod != types.AnalysisMethodRuleBased || result.AIEnhanced {
		t.Errorf("Expected rule-based method, got %q", result.AnalysisMethod)
	}
	if result.ProcessingDetails.FallbackReason != ReasonDisabled || result.ProcessingDetails.AIAnalysisAttempted {
		t.Errorf("Unexpected processing details: %+v", result.ProcessingDetails)
	}
	if result.ConfidenceLevel != "Low AI indicators" {
		t.Errorf("Expected low bucket, got %q", result.ConfidenceLevel)
	}
}

func TestAnalyzerWithClassifier(t *testing.T) {
	classifier := &fakeClassifier{result: &types.Classification{AIProbability: 90, Confidence: 0.95, Model: "fake-detector"}}
	analyzer, err := NewAnalyzer(nil, DefaultWeights(), WithClassifier(classifier, time.Second))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := analyzer.Analyze(context.Background(), casualResume)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := math.Round((0.7*90+0.3*result.RuleBasedProbability)*100) / 100
	if result.AIProbability != expected {
		t.Errorf("Expected fused probability %v, got %v", expected, result.AIProbability)
	}
	if !result.AIEnhanced || result.AnalysisMethod != types.AnalysisMethodEnsemble {
		t.Errorf("Expected AI-enhanced ensemble, got %q", result.AnalysisMethod)
	}
	if result.EnsembleInsights == nil || result.EnsembleInsights.ModelUsed != "fake-detector" {
		t.Errorf("Expected ensemble insights, got %+v", result.EnsembleInsights)
	}
	if classifier.calls != 1 {
		t.Errorf("Expected exactly one classifier call, got %d", classifier.calls)
	}
}

func TestAnalyzerClassifierFailures(t *testing.T) {
	tests := []struct {
		name       string
		classifier *fakeClassifier
		reason     string
	}{
		{"error", &fakeClassifier{err: stderrors.New("connection refused")}, "connection refused"},
		{"timeout", &fakeClassifier{delay: time.Second, result: &types.Classification{AIProbability: 99}}, "timeout"},
		{"empty result", &fakeClassifier{}, "no result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer, err := NewAnalyzer(nil, DefaultWeights(), WithClassifier(tt.classifier, 20*time.Millisecond))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			result, err := analyzer.Analyze(context.Background(), casualResume)
			if err != nil {
				t.Fatalf("Expected classifier failure to be recovered, got %v", err)
			}
			if result.AIProbability != result.RuleBasedProbability {
				t.Errorf("Expected fused == rule, got %v vs %v", result.AIProbability, result.RuleBasedProbability)
			}
			if result.AIEnhanced {
				t.Error("Expected ai_enhanced to be false")
			}
			details := result.ProcessingDetails
			if !details.AIAnalysisAttempted || details.AIAnalysisSuccessful {
				t.Errorf("Unexpected processing details: %+v", details)
			}
			if !strings.Contains(details.FallbackReason, tt.reason) {
				t.Errorf("Expected fallback reason to mention %q, got %q", tt.reason, details.FallbackReason)
			}
		})
	}
}

func TestAnalyzerEmptyInput(t *testing.T) {
	classifier := &fakeClassifier{result: &types.Classification{AIProbability: 50}}
	analyzer, _ := NewAnalyzer(nil, DefaultWeights(), WithClassifier(classifier, time.Second))

	_, err := analyzer.Analyze(context.Background(), "  \n ")
	if !errors.HasCode(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Expected EmptyInputError, got %v", err)
	}
	if classifier.calls != 0 {
		t.Errorf("Expected classifier not to be called for empty input, got %d calls", classifier.calls)
	}
}

func TestAnalyzerCancelled(t *testing.T) {
	classifier := &fakeClassifier{delay: time.Second}
	analyzer, _ := NewAnalyzer(nil, DefaultWeights(), WithClassifier(classifier, 5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := analyzer.Analyze(ctx, casualResume)
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected the parent context error, got %v", err)
	}
}

func TestNewAnalyzerRejectsBadWeights(t *testing.T) {
	_, err := NewAnalyzer(nil, Weights{AI: 0.5, Rule: 0.2})
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Expected InvalidConfiguration error, got %v", err)
	}
}
