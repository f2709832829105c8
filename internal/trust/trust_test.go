package trust

import (
	"math"
	"strings"
	"testing"

	"veracity/internal/errors"
	"veracity/internal/types"
)

func TestResumeTrustRuleBased(t *testing.T) {
	analysis := &types.ResumeAnalysis{
		AIProbability: 92.73,
		AIPatterns: types.AIPatterns{
			BuzzwordDensity:     100,
			PerfectGrammarScore: 100,
			TransitionOveruse:   10,
		},
		ProcessingDetails: types.ProcessingDetails{FallbackReason: "AI detection disabled in configuration"},
	}

	score := CalculateResumeTrust(analysis)

	if score.OverallTrustScore != 7.3 {
		t.Errorf("Expected overall 7.3, got %v", score.OverallTrustScore)
	}
	if score.Components.ResumeAuthenticity != score.OverallTrustScore {
		t.Errorf("Expected overall to equal authenticity, got %v vs %v", score.OverallTrustScore, score.Components.ResumeAuthenticity)
	}
	if score.TrustLevel != "Very Low Trust - Major Red Flags" {
		t.Errorf("Unexpected trust level %q", score.TrustLevel)
	}
	if score.Components.AIVerification != "Rule-based only (AI detection disabled in configuration)" {
		t.Errorf("Unexpected ai_verification %q", score.Components.AIVerification)
	}
	if !strings.HasPrefix(score.Components.VideoAuthenticity, "Not analyzed") {
		t.Errorf("Expected video placeholder, got %q", score.Components.VideoAuthenticity)
	}

	n := len(score.NextSteps)
	if n != 6 {
		t.Fatalf("Expected 4 base steps and 2 pattern steps, got %v", score.NextSteps)
	}
	if score.NextSteps[n-2] != "Request writing sample to verify voice" {
		t.Errorf("Expected buzzword step first among pattern steps, got %q", score.NextSteps[n-2])
	}
	if score.NextSteps[n-1] != "Compare with informal written communication (e.g. email)" {
		t.Errorf("Expected grammar step last, got %q", score.NextSteps[n-1])
	}
}

func TestResumeTrustLevels(t *testing.T) {
	tests := []struct {
		probability float64
		level       string
		recPrefix   string
	}{
		{5, "High Trust - Appears Authentic", "Proceed with standard"},
		{35, "Moderate Trust - Minor Concerns", "Proceed with additional"},
		{55, "Low Trust - Significant Concerns", "Requires thorough"},
		{61, "Very Low Trust - Major Red Flags", "High risk"},
	}

	for _, tt := range tests {
		score := CalculateResumeTrust(&types.ResumeAnalysis{AIProbability: tt.probability})
		if score.TrustLevel != tt.level {
			t.Errorf("p=%v: expected %q, got %q", tt.probability, tt.level, score.TrustLevel)
		}
		if !strings.HasPrefix(score.Recommendation, tt.recPrefix) {
			t.Errorf("p=%v: expected recommendation starting %q, got %q", tt.probability, tt.recPrefix, score.Recommendation)
		}
	}
}

func TestResumeTrustAIEnhanced(t *testing.T) {
	analysis := &types.ResumeAnalysis{
		AIProbability:     10,
		AIEnhanced:        true,
		ProcessingDetails: types.ProcessingDetails{AIModelUsed: "detector-v1"},
		EnsembleInsights:  &types.EnsembleInsights{ConfidenceBoost: 20},
	}

	score := CalculateResumeTrust(analysis)
	if score.Components.ResumeAuthenticity != 90 {
		t.Errorf("Expected authenticity 90, got %v", score.Components.ResumeAuthenticity)
	}
	if score.OverallTrustScore != 95 {
		t.Errorf("Expected boosted score 95, got %v", score.OverallTrustScore)
	}
	if score.TrustLevel != "Exceptional Trust - AI Verified Authentic" {
		t.Errorf("Unexpected trust level %q", score.TrustLevel)
	}
	if score.Components.AIVerification != "AI Enhanced (detector-v1)" {
		t.Errorf("Unexpected ai_verification %q", score.Components.AIVerification)
	}
	if !score.AIEnhancementApplied {
		t.Error("Expected ai_enhancement_applied")
	}
}

func TestResumeConfidenceBonus(t *testing.T) {
	tests := []struct {
		name    string
		boost   float64
		enhance bool
		want    float64
	}{
		{"rule based ignores boost", 20, false, 70},
		{"below threshold", 9.9, true, 70},
		{"moderate agreement", 10, true, 72},
		{"moderate upper edge", 14.9, true, 72.98},
		{"strong agreement", 15, true, 73.75},
		{"strong capped", 40, true, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateResumeTrust(&types.ResumeAnalysis{
				AIProbability:    30,
				AIEnhanced:       tt.enhance,
				EnsembleInsights: &types.EnsembleInsights{ConfidenceBoost: tt.boost},
			})
			if score.Components.ResumeAuthenticity != 70 {
				t.Errorf("Expected authenticity 70, got %v", score.Components.ResumeAuthenticity)
			}
			if want := round1(tt.want); score.OverallTrustScore != want {
				t.Errorf("Expected overall %v, got %v", want, score.OverallTrustScore)
			}
		})
	}
}

func TestRedistributeWeightsSumsToOne(t *testing.T) {
	base := DefaultJobWeights()
	for mask := 0; mask < 1<<len(ComponentOrder); mask++ {
		success := make(map[string]bool)
		for i, name := range ComponentOrder {
			success[name] = mask&(1<<i) != 0
		}

		weights := RedistributeWeights(base, success)
		sum := 0.0
		for _, name := range ComponentOrder {
			sum += weights[name]
			if mask != 0 && !success[name] && weights[name] != 0 {
				t.Errorf("mask %05b: expected failed %s to have weight 0, got %v", mask, name, weights[name])
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("mask %05b: expected weights to sum to 1, got %v", mask, sum)
		}
		if mask == 0 {
			for _, name := range ComponentOrder {
				if weights[name] != base[name] {
					t.Errorf("Expected base weights when every step failed, got %v", weights)
				}
			}
		}
	}
}

func TestRedistributeWeightsProportional(t *testing.T) {
	success := map[string]bool{
		types.ComponentContentAuthenticity: true,
		types.ComponentPostingSource:       true,
	}
	weights := RedistributeWeights(DefaultJobWeights(), success)

	if math.Abs(weights[types.ComponentContentAuthenticity]-0.30/0.45) > 1e-9 {
		t.Errorf("Expected content weight 0.30/0.45, got %v", weights[types.ComponentContentAuthenticity])
	}
	if math.Abs(weights[types.ComponentPostingSource]-0.15/0.45) > 1e-9 {
		t.Errorf("Expected source weight 0.15/0.45, got %v", weights[types.ComponentPostingSource])
	}
}

func healthyComponents() JobComponents {
	return JobComponents{
		Content: &types.JobContent{
			JobDescription: strings.Repeat("Build and maintain backend services. ", 8),
			Requirements:   []string{"Go", "PostgreSQL", "Kubernetes"},
			SalaryRange:    types.SalaryRange{Found: true},
		},
		ContentAnalysis: &types.ContentAnalysis{
			Success:     true,
			AIDetection: types.ContentAIDetection{AIProbability: 20},
		},
		Company: &types.CompanyVerification{
			Success:                true,
			OverallLegitimacyScore: 60,
			GreenFlags:             []string{"a", "b"},
			RedFlags:               []string{"c"},
		},
		Web: &types.WebIntelligence{
			Success:               true,
			OverallWebCredibility: 50,
			CredibilityFactors:    []string{"a", "b", "c"},
			WarningSigns:          []string{"d"},
		},
		Source:   SourceInfo{ExtractionMethod: types.ExtractionPlainText},
		RedFlags: &types.RedFlagAnalysis{},
	}
}

func TestCalculateJobTrust(t *testing.T) {
	score := CalculateJobTrust(healthyComponents())

	expected := map[string]float64{
		types.ComponentContentAuthenticity: 100,
		types.ComponentCompanyLegitimacy:   61,
		types.ComponentWebIntelligence:     52,
		types.ComponentPostingSource:       50,
		types.ComponentRedFlagAnalysis:     100,
	}
	for name, want := range expected {
		if got := score.ComponentBreakdown[name].Score; got != want {
			t.Errorf("%s: expected score %v, got %v", name, want, got)
		}
	}

	if math.Abs(score.OverallTrustScore-73.15) > 1e-9 {
		t.Errorf("Expected overall 73.15, got %v", score.OverallTrustScore)
	}
	if score.TrustLevel != "High Trust - Likely Legitimate" {
		t.Errorf("Unexpected trust level %q", score.TrustLevel)
	}
	if score.RiskAssessment != "LOW-MODERATE RISK - Verify company details before applying" {
		t.Errorf("Unexpected risk %q", score.RiskAssessment)
	}
	if last := score.Recommendations[len(score.Recommendations)-1]; !strings.HasPrefix(last, "Company verification raised concerns") {
		t.Errorf("Expected company concern recommendation last, got %q", last)
	}
	if !strings.HasPrefix(score.AnalysisSummary, "Overall trust score: 73.") || !strings.Contains(score.AnalysisSummary, "mixed signals") {
		t.Errorf("Unexpected summary %q", score.AnalysisSummary)
	}
}

func TestCalculateJobTrustWithFailedSteps(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JobComponents)
		failed []string
	}{
		{"company failed", func(c *JobComponents) { c.Company.Success = false }, []string{types.ComponentCompanyLegitimacy}},
		{"web missing", func(c *JobComponents) { c.Web = nil }, []string{types.ComponentWebIntelligence}},
		{"both failed", func(c *JobComponents) {
			c.Company = &types.CompanyVerification{Error: "domain does not resolve"}
			c.Web.Success = false
		}, []string{types.ComponentCompanyLegitimacy, types.ComponentWebIntelligence}},
		{"content failed", func(c *JobComponents) { c.ContentAnalysis.Success = false }, []string{types.ComponentContentAuthenticity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := healthyComponents()
			tt.mutate(&components)
			score := CalculateJobTrust(components)

			weightSum, contributionSum := 0.0, 0.0
			for _, name := range ComponentOrder {
				c := score.ComponentBreakdown[name]
				weightSum += c.Weight
				contributionSum += c.Contribution
			}
			if math.Abs(weightSum-1) > 1e-9 {
				t.Errorf("Expected weights to sum to 1, got %v", weightSum)
			}
			if math.Abs(contributionSum-score.OverallTrustScore) > 1e-6 {
				t.Errorf("Expected overall to equal the sum of contributions, got %v vs %v", score.OverallTrustScore, contributionSum)
			}
			for _, name := range tt.failed {
				c := score.ComponentBreakdown[name]
				if c.Success || c.Contribution != 0 || c.Weight != 0 {
					t.Errorf("Expected %s to be failed with no contribution, got %+v", name, c)
				}
			}
		})
	}
}

func TestJobContributionsFollowReportedScores(t *testing.T) {
	components := healthyComponents()
	components.Company.OverallLegitimacyScore = 60.04
	components.Web.OverallWebCredibility = 50.04

	score := CalculateJobTrust(components)

	company := score.ComponentBreakdown[types.ComponentCompanyLegitimacy]
	if company.Score != 61 || company.Contribution != 15.25 {
		t.Errorf("Expected company score 61 contributing 15.25, got %v contributing %v", company.Score, company.Contribution)
	}
	web := score.ComponentBreakdown[types.ComponentWebIntelligence]
	if web.Score != 52 || web.Contribution != 10.4 {
		t.Errorf("Expected web score 52 contributing 10.4, got %v contributing %v", web.Score, web.Contribution)
	}
	for _, name := range ComponentOrder {
		c := score.ComponentBreakdown[name]
		if want := math.Round(c.Score*c.Weight*100) / 100; c.Contribution != want {
			t.Errorf("%s: expected contribution %v from score %v and weight %v, got %v", name, want, c.Score, c.Weight, c.Contribution)
		}
	}
	if math.Abs(score.OverallTrustScore-73.15) > 1e-9 {
		t.Errorf("Expected overall 73.15, got %v", score.OverallTrustScore)
	}
}

func TestNewJobCalculatorValidation(t *testing.T) {
	bad := DefaultJobWeights()
	bad[types.ComponentPostingSource] = 0.5
	if _, err := NewJobCalculator(bad); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Expected InvalidConfiguration error, got %v", err)
	}

	missing := DefaultJobWeights()
	delete(missing, types.ComponentRedFlagAnalysis)
	if _, err := NewJobCalculator(missing); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Expected InvalidConfiguration error, got %v", err)
	}
}

func TestSourceScore(t *testing.T) {
	tests := []struct {
		source   SourceInfo
		expected float64
	}{
		{SourceInfo{ExtractionMethod: types.ExtractionWebScraping, IsLegitimateJobBoard: true, DomainCredibility: 30}, 90},
		{SourceInfo{ExtractionMethod: types.ExtractionWebScraping, DomainCredibility: 30}, 30},
		{SourceInfo{ExtractionMethod: types.ExtractionPDFText}, 60},
		{SourceInfo{ExtractionMethod: types.ExtractionOCRImage}, 60},
		{SourceInfo{ExtractionMethod: types.ExtractionPlainText}, 50},
	}
	for _, tt := range tests {
		if got := sourceScore(tt.source); got != tt.expected {
			t.Errorf("%+v: expected %v, got %v", tt.source, tt.expected, got)
		}
	}
}

func TestRedFlagScore(t *testing.T) {
	flags := &types.RedFlagAnalysis{
		ContentRedFlags:    []string{"a", "b"},
		ScamPatternMatches: []string{"financial_scam: wire transfer", "mlm_pyramid: be your own boss", "x", "y", "z"},
	}
	// 100 - 16 - min(75, 60)
	if got := redFlagScore(flags); got != 24 {
		t.Errorf("Expected 24, got %v", got)
	}
	if got := redFlagScore(nil); got != 70 {
		t.Errorf("Expected neutral 70, got %v", got)
	}
}
