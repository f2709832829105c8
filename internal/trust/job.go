package trust

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"veracity/internal/errors"
	"veracity/internal/types"
)

// ComponentOrder is the fixed order in which job trust components are evaluated
var ComponentOrder = []string{
	types.ComponentContentAuthenticity,
	types.ComponentCompanyLegitimacy,
	types.ComponentWebIntelligence,
	types.ComponentPostingSource,
	types.ComponentRedFlagAnalysis,
}

// DefaultJobWeights returns the base job component weights
func DefaultJobWeights() map[string]float64 {
	return map[string]float64{
		types.ComponentContentAuthenticity: 0.30,
		types.ComponentCompanyLegitimacy:   0.25,
		types.ComponentWebIntelligence:     0.20,
		types.ComponentPostingSource:       0.15,
		types.ComponentRedFlagAnalysis:     0.10,
	}
}

// SourceInfo describes where a posting came from
type SourceInfo struct {
	ExtractionMethod     string
	DomainCredibility    float64
	IsLegitimateJobBoard bool
}

// JobComponents are the step results a job trust score is computed from.
// A nil or unsuccessful company or web result marks that step as failed.
type JobComponents struct {
	Content         *types.JobContent
	ContentAnalysis *types.ContentAnalysis
	Company         *types.CompanyVerification
	Web             *types.WebIntelligence
	Source          SourceInfo
	RedFlags        *types.RedFlagAnalysis
}

// StepSuccess reports which components can contribute to the score
func (c JobComponents) StepSuccess() map[string]bool {
	return map[string]bool{
		types.ComponentContentAuthenticity: c.ContentAnalysis != nil && c.ContentAnalysis.Success,
		types.ComponentCompanyLegitimacy:   c.Company != nil && c.Company.Success,
		types.ComponentWebIntelligence:     c.Web != nil && c.Web.Success,
		types.ComponentPostingSource:       true,
		types.ComponentRedFlagAnalysis:     c.RedFlags != nil,
	}
}

// JobCalculator computes job-posting trust scores
type JobCalculator struct {
	weights map[string]float64
	now     func() time.Time
}

// NewJobCalculator validates weights and returns a calculator. Nil weights
// select DefaultJobWeights.
func NewJobCalculator(weights map[string]float64) (*JobCalculator, error) {
	if weights == nil {
		weights = DefaultJobWeights()
	}
	if err := ValidateJobWeights(weights); err != nil {
		return nil, err
	}
	copied := make(map[string]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	return &JobCalculator{weights: copied, now: time.Now}, nil
}

// ValidateJobWeights checks that every component has a non-negative weight
// and that the weights sum to 1
func ValidateJobWeights(weights map[string]float64) error {
	sum := 0.0
	for _, name := range ComponentOrder {
		w, ok := weights[name]
		if !ok {
			return errors.NewInvalidConfigurationError("missing job component weight "+name, nil)
		}
		if w < 0 {
			return errors.NewInvalidConfigurationError("job component weight "+name+" must not be negative", nil)
		}
		sum += w
	}
	if len(weights) != len(ComponentOrder) {
		return errors.NewInvalidConfigurationError("unknown job component weight", nil)
	}
	if math.Abs(sum-1) > 1e-9 {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("job component weights must sum to 1, got %.4f", sum), nil)
	}
	return nil
}

// CalculateJobTrust scores components with the default weights
func CalculateJobTrust(c JobComponents) types.JobTrustScore {
	calc, _ := NewJobCalculator(nil)
	return calc.Calculate(c)
}

// RedistributeWeights gives each failed component weight 0 and spreads its
// base weight over the succeeding components in proportion to their own base
// weights. If nothing succeeded the base weights are returned unchanged.
func RedistributeWeights(base map[string]float64, success map[string]bool) map[string]float64 {
	kept := 0.0
	for _, name := range ComponentOrder {
		if success[name] {
			kept += base[name]
		}
	}

	out := make(map[string]float64, len(ComponentOrder))
	for _, name := range ComponentOrder {
		switch {
		case kept == 0:
			out[name] = base[name]
		case success[name]:
			out[name] = base[name] / kept
		default:
			out[name] = 0
		}
	}
	return out
}

// Calculate computes the weighted job trust score. Failed steps contribute 0.
func (j *JobCalculator) Calculate(c JobComponents) types.JobTrustScore {
	scores := map[string]float64{
		types.ComponentContentAuthenticity: contentScore(c.Content, c.ContentAnalysis),
		types.ComponentCompanyLegitimacy:   companyScore(c.Company),
		types.ComponentWebIntelligence:     webScore(c.Web),
		types.ComponentPostingSource:       sourceScore(c.Source),
		types.ComponentRedFlagAnalysis:     redFlagScore(c.RedFlags),
	}
	success := c.StepSuccess()
	weights := RedistributeWeights(j.weights, success)

	breakdown := make(map[string]types.ComponentScore, len(ComponentOrder))
	overall := 0.0
	for _, name := range ComponentOrder {
		// contribution is derived from the reported score so the breakdown adds up
		score := round1(scores[name])
		contribution := 0.0
		if success[name] {
			contribution = round2(score * weights[name])
		}
		overall += contribution
		breakdown[name] = types.ComponentScore{
			Score:        score,
			Weight:       weights[name],
			Contribution: contribution,
			Success:      success[name],
		}
	}
	overall = round2(clamp(overall))

	return types.JobTrustScore{
		OverallTrustScore:    overall,
		TrustLevel:           jobTrustLevel(overall),
		RiskAssessment:       riskAssessment(overall),
		ComponentBreakdown:   breakdown,
		Recommendations:      jobRecommendations(overall, c),
		NextSteps:            jobNextSteps(overall),
		AnalysisSummary:      analysisSummary(overall, scores, success),
		CalculationTimestamp: j.now().UTC().Format(time.RFC3339),
	}
}

func contentScore(content *types.JobContent, analysis *types.ContentAnalysis) float64 {
	if content == nil && analysis == nil {
		return 50
	}

	score := 70.0
	if analysis != nil {
		switch ai := analysis.AIDetection.AIProbability; {
		case ai < 30:
			score += 20
		case ai > 70:
			score -= 25
		}
	}

	if content != nil {
		switch n := utf8.RuneCountInString(content.JobDescription); {
		case n > 200:
			score += 10
		case n < 50:
			score -= 15
		}

		switch n := len(content.Requirements); {
		case n >= 3:
			score += 5
		case n == 0:
			score -= 10
		}

		score -= math.Min(float64(len(content.RedFlagKeywords))*5, 30)

		if content.SalaryRange.IsSuspicious {
			score -= 20
		} else if content.SalaryRange.Found {
			score += 5
		}
	}
	return clamp(score)
}

func companyScore(company *types.CompanyVerification) float64 {
	if company == nil {
		return 40
	}
	score := company.OverallLegitimacyScore
	score += math.Min(float64(len(company.GreenFlags))*3, 15)
	score -= math.Min(float64(len(company.RedFlags))*5, 25)
	return clamp(score)
}

func webScore(web *types.WebIntelligence) float64 {
	if web == nil {
		return 45
	}
	score := web.OverallWebCredibility
	score += math.Min(float64(len(web.CredibilityFactors))*2, 10)
	score -= math.Min(float64(len(web.WarningSigns))*4, 20)
	return clamp(score)
}

func sourceScore(source SourceInfo) float64 {
	switch source.ExtractionMethod {
	case types.ExtractionWebScraping:
		if source.IsLegitimateJobBoard {
			return 90
		}
		return clamp(source.DomainCredibility)
	case types.ExtractionPDFText, types.ExtractionOCRImage:
		return 60
	default:
		return 50
	}
}

func redFlagScore(flags *types.RedFlagAnalysis) float64 {
	if flags == nil {
		return 70
	}
	score := 100.0
	score -= math.Min(float64(len(flags.ContentRedFlags))*8, 40)
	score -= math.Min(float64(len(flags.CompanyRedFlags))*10, 40)
	score -= math.Min(float64(len(flags.WebRedFlags))*6, 30)
	score -= math.Min(float64(len(flags.ScamPatternMatches))*15, 60)
	return clamp(score)
}
