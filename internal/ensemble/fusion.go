package ensemble

import (
	"fmt"
	"math"

	"veracity/internal/errors"
	"veracity/internal/types"
)

// Weights are the fusion weights of the classifier and rule-based scores
type Weights struct {
	AI   float64
	Rule float64
}

// DefaultWeights favour the classifier when it is available
func DefaultWeights() Weights {
	return Weights{AI: 0.7, Rule: 0.3}
}

// Validate checks the weights are non-negative and sum to 1
func (w Weights) Validate() error {
	if w.AI < 0 || w.Rule < 0 {
		return errors.NewInvalidConfigurationError("ensemble weights must not be negative", nil)
	}
	if math.Abs(w.AI+w.Rule-1) > 1e-9 {
		return errors.NewInvalidConfigurationError(
			fmt.Sprintf("ensemble weights must sum to 1, got %.4f", w.AI+w.Rule), nil)
	}
	return nil
}

// Fusion is the fused probability and the record of how it was produced
type Fusion struct {
	Probability     float64
	RuleProbability float64
	AIEnhanced      bool
	Details         types.ProcessingDetails
	Insights        *types.EnsembleInsights
}

// Fuse combines a rule-based probability with a classifier outcome. A
// Failure leaves the rule probability untouched. Fuse is pure: the same
// inputs always give the same Fusion.
func Fuse(rule float64, outcome Outcome, w Weights) Fusion {
	f := Fusion{
		Probability:     rule,
		RuleProbability: rule,
		Details: types.ProcessingDetails{
			RuleBasedCompleted: true,
			EnsembleMethod:     types.EnsembleMethodRuleBased,
			AIWeight:           w.AI,
			RuleWeight:         w.Rule,
		},
	}

	switch o := outcome.(type) {
	case Success:
		ai := clampScore(o.Score)
		f.Probability = math.Round(clampScore(w.AI*ai+w.Rule*rule)*100) / 100
		f.AIEnhanced = true
		f.Details.AIAnalysisAttempted = true
		f.Details.AIAnalysisSuccessful = true
		f.Details.EnsembleMethod = types.EnsembleMethodWeighted
		f.Details.AIModelUsed = o.Model
		f.Insights = insights(rule, ai, o)
	case Failure:
		f.Details.AIAnalysisAttempted = o.Attempted
		f.Details.FallbackReason = o.Reason
	default:
		f.Details.FallbackReason = ReasonUnknownOutcome
	}
	return f
}

func insights(rule, ai float64, s Success) *types.EnsembleInsights {
	diff := math.Abs(ai - rule)
	return &types.EnsembleInsights{
		RuleBasedScore:       rule,
		AIModelScore:         ai,
		ScoreDifference:      math.Round(diff*100) / 100,
		MethodConsensus:      consensus(diff),
		ReliabilityIndicator: reliability(diff),
		ModelUsed:            s.Model,
		ConfidenceBoost:      math.Round(math.Max(0, clampScore(s.Confidence*100)-ruleCertainty(rule))*100) / 100,
	}
}

func consensus(diff float64) string {
	switch {
	case diff <= 15:
		return "Strong"
	case diff <= 30:
		return "Moderate"
	default:
		return "Weak"
	}
}

func reliability(diff float64) string {
	switch {
	case diff <= 10:
		return "High"
	case diff <= 25:
		return "Medium"
	default:
		return "Low"
	}
}

// ruleCertainty is the confidence, on a 0-100 scale, that a rule-based
// probability deserves. Scores near either extreme are more certain.
func ruleCertainty(p float64) float64 {
	switch {
	case p >= 80 || p <= 20:
		return 85
	case p >= 70 || p <= 30:
		return 65
	default:
		return 40
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
