package trust

import (
	"fmt"

	"veracity/internal/types"
)

var componentNames = map[string]string{
	types.ComponentContentAuthenticity: "job posting content",
	types.ComponentCompanyLegitimacy:   "company verification",
	types.ComponentWebIntelligence:     "web presence",
	types.ComponentPostingSource:       "posting source",
	types.ComponentRedFlagAnalysis:     "scam detection",
}

func jobTrustLevel(score float64) string {
	switch {
	case score >= 85:
		return "Very High Trust - Highly Likely Legitimate"
	case score >= 70:
		return "High Trust - Likely Legitimate"
	case score >= 55:
		return "Moderate Trust - Proceed with Caution"
	case score >= 35:
		return "Low Trust - Exercise Significant Caution"
	default:
		return "Very Low Trust - High Risk of Scam"
	}
}

func riskAssessment(score float64) string {
	switch {
	case score >= 80:
		return "LOW RISK - Safe to apply with standard precautions"
	case score >= 65:
		return "LOW-MODERATE RISK - Verify company details before applying"
	case score >= 50:
		return "MODERATE RISK - Research thoroughly and ask detailed questions"
	case score >= 30:
		return "HIGH RISK - Multiple warning signs detected"
	default:
		return "CRITICAL RISK - Strong scam indicators present"
	}
}

func jobRecommendations(score float64, c JobComponents) []string {
	var recs []string
	switch {
	case score >= 75:
		recs = []string{
			"Job posting appears legitimate and trustworthy",
			"Proceed with standard application process",
			"Still verify company details during interview process",
			"Ask for clear job description and expectations",
		}
	case score >= 55:
		recs = []string{
			"Exercise moderate caution when applying",
			"Research the company thoroughly before applying",
			"Verify company contact information independently",
			"Be cautious of any requests for upfront payments",
			"Ask detailed questions about the role and company",
		}
	case score >= 35:
		recs = []string{
			"HIGH CAUTION - Multiple warning signs detected",
			"Thoroughly investigate company legitimacy",
			"Contact company through official channels only",
			"Never provide personal financial information",
			"Insist on video/phone interview before proceeding",
			"Request official company documentation",
		}
	default:
		recs = []string{
			"AVOID - Strong indicators of fraudulent posting",
			"Do not provide any personal information",
			"Do not send money or pay any fees",
			"Consider reporting as potential scam",
			"Look for legitimate opportunities elsewhere",
		}
	}

	if c.Content != nil && len(c.Content.RedFlagKeywords) > 0 {
		recs = append(recs, "Job posting contains suspicious keywords - investigate further")
	}
	if c.Company != nil && len(c.Company.RedFlags) > 0 {
		recs = append(recs, "Company verification raised concerns - verify through official channels")
	}
	return recs
}

func jobNextSteps(score float64) []string {
	switch {
	case score >= 70:
		return []string{
			"1. Prepare a tailored resume and cover letter",
			"2. Research the company's recent news and developments",
			"3. Apply through official company website or job board",
			"4. Follow up appropriately after application",
		}
	case score >= 50:
		return []string{
			"1. Verify company exists through independent research",
			"2. Check company reviews on Glassdoor or similar sites",
			"3. Look up company leadership on LinkedIn",
			"4. Apply only if verification checks pass",
			"5. Be prepared with questions about company legitimacy",
		}
	default:
		return []string{
			"1. Do NOT apply to this position",
			"2. Research legitimate companies in your field",
			"3. Use established job boards for job searching",
			"4. Report suspicious posting if on legitimate platform",
			"5. Continue job search with verified opportunities",
		}
	}
}

// analysisSummary names the strongest and weakest components. Only succeeding
// components are compared unless every step failed.
func analysisSummary(overall float64, scores map[string]float64, success map[string]bool) string {
	candidates := make([]string, 0, len(ComponentOrder))
	for _, name := range ComponentOrder {
		if success[name] {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		candidates = ComponentOrder
	}

	strongest, weakest := candidates[0], candidates[0]
	for _, name := range candidates[1:] {
		if scores[name] > scores[strongest] {
			strongest = name
		}
		if scores[name] < scores[weakest] {
			weakest = name
		}
	}

	summary := fmt.Sprintf("Overall trust score: %.1f%%. ", overall)
	switch {
	case overall >= 75:
		summary += fmt.Sprintf("This job posting shows strong legitimacy indicators, particularly in %s (%.1f%%). ",
			componentNames[strongest], scores[strongest])
	case overall >= 50:
		summary += fmt.Sprintf("This job posting shows mixed signals. Strong performance in %s (%.1f%%) but concerns in %s (%.1f%%). ",
			componentNames[strongest], scores[strongest], componentNames[weakest], scores[weakest])
	default:
		summary += fmt.Sprintf("This job posting shows significant warning signs, especially in %s (%.1f%%). ",
			componentNames[weakest], scores[weakest])
	}

	switch {
	case overall >= 70:
		summary += "Proceed with standard job application precautions."
	case overall >= 40:
		summary += "Exercise heightened caution and verify company details thoroughly."
	default:
		summary += "Strong recommendation to avoid this opportunity."
	}
	return summary
}
