// Package trust turns analysis results into trust scores for résumés and job postings.
package trust

import (
	"fmt"
	"math"

	"veracity/internal/types"
)

// DefaultPatternThreshold is the pattern score at which pattern-specific next steps are added
const DefaultPatternThreshold = 60.0

const (
	videoPlaceholder = "Not analyzed (video module unavailable)"
	audioPlaceholder = "Not analyzed (audio module unavailable)"
)

var patternNextSteps = []struct {
	score func(types.AIPatterns) float64
	step  string
}{
	{func(p types.AIPatterns) float64 { return p.BuzzwordDensity }, "Request writing sample to verify voice"},
	{func(p types.AIPatterns) float64 { return p.SentenceUniformity }, "Ask open-ended questions about specific projects"},
	{func(p types.AIPatterns) float64 { return p.TransitionOveruse }, "Conduct a live writing or communication exercise"},
	{func(p types.AIPatterns) float64 { return p.RepetitiveStructures }, "Probe each listed achievement individually"},
	{func(p types.AIPatterns) float64 { return p.PerfectGrammarScore }, "Compare with informal written communication (e.g. email)"},
}

// ResumeCalculator maps a résumé analysis to a trust score
type ResumeCalculator struct {
	patternThreshold float64
}

func NewResumeCalculator(patternThreshold float64) *ResumeCalculator {
	if patternThreshold <= 0 {
		patternThreshold = DefaultPatternThreshold
	}
	return &ResumeCalculator{patternThreshold: patternThreshold}
}

// CalculateResumeTrust scores an analysis with the default pattern threshold
func CalculateResumeTrust(analysis *types.ResumeAnalysis) types.TrustScore {
	return NewResumeCalculator(DefaultPatternThreshold).Calculate(analysis)
}

// Calculate derives trust from the fused AI probability. Video and audio are
// placeholders and do not take part in the average, so the overall score is
// the résumé authenticity, raised slightly when the classifier agreed with
// more confidence than the rules alone.
func (c *ResumeCalculator) Calculate(analysis *types.ResumeAnalysis) types.TrustScore {
	authenticity := round1(clamp(100 - analysis.AIProbability))
	overall := authenticity

	aiVerification := fmt.Sprintf("Rule-based only (%s)", fallbackReason(analysis.ProcessingDetails))
	if analysis.AIEnhanced {
		model := analysis.ProcessingDetails.AIModelUsed
		if model == "" {
			model = "unknown model"
		}
		aiVerification = fmt.Sprintf("AI Enhanced (%s)", model)
		if analysis.EnsembleInsights != nil {
			overall = round1(clamp(overall + confidenceBonus(analysis.EnsembleInsights.ConfidenceBoost)))
		}
	}

	level := trustLevel(overall)
	if analysis.AIEnhanced {
		level = enhancedTrustLevel(overall)
	}

	return types.TrustScore{
		OverallTrustScore: overall,
		TrustLevel:        level,
		Components: types.TrustComponents{
			ResumeAuthenticity: authenticity,
			AIVerification:     aiVerification,
			VideoAuthenticity:  videoPlaceholder,
			AudioAuthenticity:  audioPlaceholder,
		},
		Recommendation:       recommendation(overall),
		NextSteps:            c.nextSteps(overall, analysis.AIPatterns),
		AIEnhancementApplied: analysis.AIEnhanced,
	}
}

func confidenceBonus(boost float64) float64 {
	switch {
	case boost >= 15:
		return math.Min(5, boost/4)
	case boost >= 10:
		return math.Min(3, boost/5)
	default:
		return 0
	}
}

func fallbackReason(d types.ProcessingDetails) string {
	if d.FallbackReason == "" {
		return "Unknown"
	}
	return d.FallbackReason
}

func trustLevel(score float64) string {
	switch {
	case score >= 80:
		return "High Trust - Appears Authentic"
	case score >= 60:
		return "Moderate Trust - Minor Concerns"
	case score >= 40:
		return "Low Trust - Significant Concerns"
	default:
		return "Very Low Trust - Major Red Flags"
	}
}

func enhancedTrustLevel(score float64) string {
	switch {
	case score >= 90:
		return "Exceptional Trust - AI Verified Authentic"
	case score >= 80:
		return "Very High Trust - AI Enhanced Verification"
	case score >= 70:
		return "High Trust - AI Assisted Analysis"
	case score >= 60:
		return "Moderate Trust - AI Enhanced Assessment"
	case score >= 40:
		return "Low Trust - AI Detected Concerns"
	default:
		return "Very Low Trust - AI Flagged High Risk"
	}
}

func recommendation(score float64) string {
	switch {
	case score >= 80:
		return "Proceed with standard evaluation process"
	case score >= 60:
		return "Proceed with additional verification steps"
	case score >= 40:
		return "Requires thorough manual review before proceeding"
	default:
		return "High risk - recommend detailed investigation"
	}
}

func (c *ResumeCalculator) nextSteps(score float64, patterns types.AIPatterns) []string {
	var steps []string
	switch {
	case score >= 80:
		steps = []string{
			"Continue with normal interview process",
			"Standard reference checks recommended",
		}
	case score >= 60:
		steps = []string{
			"Conduct detailed behavioral interview",
			"Verify specific accomplishments mentioned",
			"Request portfolio or work samples",
		}
	case score >= 40:
		steps = []string{
			"Extensive technical assessment required",
			"Multiple reference checks necessary",
			"Consider skills-based evaluation",
			"Request live demonstration of claimed abilities",
		}
	default:
		steps = []string{
			"Consider rejecting or flagging application",
			"If proceeding, require comprehensive verification",
			"Multiple rounds of assessment recommended",
			"Legal/compliance review may be necessary",
		}
	}

	for _, p := range patternNextSteps {
		if p.score(patterns) >= c.patternThreshold {
			steps = append(steps, p.step)
		}
	}
	return steps
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
