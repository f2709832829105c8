package ensemble

import "fmt"

// OverallConfidence describes how much the fused probability can be relied on
func OverallConfidence(f Fusion) string {
	p := f.Probability
	if !f.AIEnhanced {
		switch {
		case p >= 80 || p <= 20:
			return "High Confidence - Rule-based"
		case p >= 70 || p <= 30:
			return "Medium Confidence - Rule-based"
		default:
			return "Low Confidence - Rule-based (Recommend AI retry)"
		}
	}

	boost := 0.0
	if f.Insights != nil {
		boost = f.Insights.ConfidenceBoost
	}
	switch {
	case boost >= 20 && (p >= 80 || p <= 20):
		return "Very High Confidence - AI Enhanced"
	case boost >= 15 && (p >= 70 || p <= 30):
		return "High Confidence - AI Enhanced"
	case boost >= 10:
		return "Medium-High Confidence - AI Enhanced"
	default:
		return "Medium Confidence - AI Enhanced"
	}
}

var recommendationTiers = []struct {
	min   float64
	items []string
}{
	{85, []string{
		"CRITICAL ALERT: Very high likelihood of AI-generated content",
		"Mandatory comprehensive verification process required",
		"Request detailed work samples and live portfolio demonstration",
		"Conduct multiple reference checks with previous employers",
		"Escalate to senior review team before any hiring decision",
		"Consider skills-based practical assessments",
	}},
	{70, []string{
		"HIGH RISK: Strong AI generation indicators present",
		"Conduct thorough technical and behavioral interviews",
		"Verify specific metrics and accomplishments mentioned",
		"Request live demonstration of claimed technical skills",
		"Ask for detailed explanations of project methodologies",
	}},
	{50, []string{
		"MODERATE RISK: Notable AI patterns detected",
		"Enhanced interview process with detailed questioning",
		"Focus on experience-specific and scenario-based questions",
		"Verify key claims through targeted follow-up questions",
	}},
	{25, []string{
		"LOW-MODERATE RISK: Minor AI indicators present",
		"Standard plus interview with additional verification",
		"Ask for specific examples of mentioned experiences",
	}},
	{0, []string{
		"LOW RISK: Resume appears largely authentic",
		"Standard evaluation process appropriate",
		"Routine verification questions sufficient",
	}},
}

// Recommendations returns the ordered reviewer actions for a fused result,
// most actionable first
func Recommendations(f Fusion) []string {
	recs := []string{}
	for _, tier := range recommendationTiers {
		if f.Probability >= tier.min {
			recs = append(recs, tier.items...)
			break
		}
	}

	if f.AIEnhanced && f.Insights != nil {
		switch f.Insights.MethodConsensus {
		case "Strong":
			recs = append(recs, "Multiple detection methods agree - high reliability score")
		case "Moderate":
			recs = append(recs, "Mixed signals detected - recommend additional manual review")
		default:
			recs = append(recs, "Conflicting analysis results - manual expert review recommended")
		}
	}

	if f.Details.AIAnalysisAttempted && !f.Details.AIAnalysisSuccessful {
		recs = append(recs, fmt.Sprintf("Note: AI analysis unavailable (%s) - using rule-based analysis", f.Details.FallbackReason))
	}
	return recs
}
