package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"veracity/internal/config"
	"veracity/internal/ensemble"
	"veracity/internal/errors"
	"veracity/internal/jobs"
	"veracity/internal/types"
)

const generatedResume = `Results-driven professional with a proven track record of leveraging cutting-edge solutions.
Spearheaded cross-functional initiatives to drive synergy and deliver innovative, scalable outcomes.
Furthermore, orchestrated dynamic strategies that optimized robust stakeholder engagement.
Moreover, championed transformative best practices to empower high-performing teams.`

const scamPosting = `Job Title: Data Entry Clerk
Company: Global Wealth Partners LLC
Location: Remote

URGENT HIRING!!! Make money fast with guaranteed income. Pay upfront fee for your starter kit via western union. Act now, limited time, apply now!

Contact: recruiter@ghost-hiring.com`

func testConfig() *config.Config {
	return &config.Config{
		Classifier: config.ClassifierConfig{Enabled: false, Provider: config.ProviderHuggingFace},
		Ensemble:   config.EnsembleConfig{AIWeight: 0.7, RuleWeight: 0.3},
		Scoring:    config.ScoringConfig{PatternThreshold: 60},
		Jobs:       config.JobsConfig{RequestTimeout: time.Second, MaxRedirects: 2},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(context.Background(), cfg, errors.NewDiscardLogger(), opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestAnalyzeResumeRuleBasedOnly(t *testing.T) {
	e := newTestEngine(t, testConfig())
	file := &types.FileInfo{Filename: "cv.txt", Size: 512, SizeHuman: "512 B"}

	result, err := e.AnalyzeResume(context.Background(), generatedResume, file)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Status != types.StatusSuccess || result.AnalysisType != types.AnalysisTypeResume {
		t.Errorf("Unexpected envelope: %s/%s", result.Status, result.AnalysisType)
	}
	if result.MVPVersion != types.MVPVersion {
		t.Errorf("Expected mvp version %q, got %q", types.MVPVersion, result.MVPVersion)
	}
	if result.FileInfo != file {
		t.Error("Expected file info to be passed through")
	}
	if result.Analysis.AIEnhanced {
		t.Error("Expected rule-based analysis with the classifier disabled")
	}
	if result.Analysis.ProcessingDetails.FallbackReason != ensemble.ReasonDisabled {
		t.Errorf("Unexpected fallback reason %q", result.Analysis.ProcessingDetails.FallbackReason)
	}
	if result.Analysis.AIProbability != result.Analysis.RuleBasedProbability {
		t.Errorf("Rule-only probability should equal the rule score: %v vs %v",
			result.Analysis.AIProbability, result.Analysis.RuleBasedProbability)
	}
	if _, err := time.Parse(time.RFC3339, result.ProcessingTimestamp); err != nil {
		t.Errorf("Timestamp is not RFC3339: %v", err)
	}
	if got, want := result.TrustScore.OverallTrustScore, 100-result.Analysis.AIProbability; got < want-0.1 || got > want+0.1 {
		t.Errorf("Expected trust near %.1f, got %.1f", want, got)
	}
}

func TestAnalyzeResumeEmptyInput(t *testing.T) {
	e := newTestEngine(t, testConfig())

	_, err := e.AnalyzeResume(context.Background(), "   \n\t", nil)
	if !errors.HasCode(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Expected EMPTY_INPUT, got %v", err)
	}
}

func TestAnalyzeResumeWithClassifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"label":"Fake","score":0.9},{"label":"Real","score":0.1}]`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Classifier = config.ClassifierConfig{
		Enabled:       true,
		Provider:      config.ProviderHuggingFace,
		Model:         "org/detector",
		FallbackModel: "org/zero-shot",
		APIKey:        "hf_test_key_123",
		BaseURL:       server.URL,
		Timeout:       5 * time.Second,
	}
	e := newTestEngine(t, cfg)

	result, err := e.AnalyzeResume(context.Background(), generatedResume, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Analysis.AIEnhanced {
		t.Fatalf("Expected ensemble analysis, got %+v", result.Analysis.ProcessingDetails)
	}
	if result.Analysis.EnsembleInsights == nil || result.Analysis.EnsembleInsights.AIModelScore != 90 {
		t.Errorf("Expected classifier score 90 in insights, got %+v", result.Analysis.EnsembleInsights)
	}
	if !e.ClassifierEnabled() {
		t.Error("Expected classifier to be enabled")
	}
}

func TestAnalyzeJobText(t *testing.T) {
	e := newTestEngine(t, testConfig())

	result, err := e.AnalyzeJob(context.Background(), jobs.Input{Text: scamPosting})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.AnalysisID == "" {
		t.Error("Expected an analysis id")
	}
	if result.InputType != jobs.InputTypeText {
		t.Errorf("Expected text input type, got %q", result.InputType)
	}
	if result.CompanyVerification != nil || result.WebIntelligence != nil {
		t.Error("Disabled steps should not produce results")
	}
	if result.RedFlagAnalysis.Total() == 0 {
		t.Error("Expected red flags for a scam posting")
	}
	if result.TrustScore.OverallTrustScore >= 60 {
		t.Errorf("Expected a low trust score, got %.1f", result.TrustScore.OverallTrustScore)
	}
}

func TestAnalyzeJobEmptyInput(t *testing.T) {
	e := newTestEngine(t, testConfig())

	_, err := e.AnalyzeJob(context.Background(), jobs.Input{Text: "  "})
	if !errors.HasCode(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Expected EMPTY_INPUT, got %v", err)
	}
}

func TestHealthWithoutClassifier(t *testing.T) {
	e := newTestEngine(t, testConfig())

	h := e.Health(context.Background())
	if h.ModelReady || h.APIAccessible {
		t.Error("Expected classifier to be reported unavailable")
	}
	if h.Reason != ensemble.ReasonDisabled {
		t.Errorf("Unexpected reason %q", h.Reason)
	}
	if got := e.OverallStatus(h); got != StatusRuleBasedOnly {
		t.Errorf("Expected %s, got %s", StatusRuleBasedOnly, got)
	}
	if stats := e.CircuitBreakerStats(); stats["enabled"] != false {
		t.Errorf("Unexpected breaker stats %v", stats)
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad ensemble weights", func(c *config.Config) { c.Ensemble = config.EnsembleConfig{AIWeight: 0.5, RuleWeight: 0.2} }},
		{"bad job weights", func(c *config.Config) { c.Jobs.TrustWeights = map[string]float64{"content_authenticity": 2} }},
		{"missing lexicon file", func(c *config.Config) { c.Scoring.LexiconFile = "/nonexistent/lexicon.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg, nil); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}
