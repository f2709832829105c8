package jobs

import (
	"strings"
	"unicode"

	"veracity/internal/types"
)

var (
	corporateSuffixes = []string{"inc", "corp", "corporation", "llc", "ltd", "limited", "company", "co", "group",
		"solutions", "technologies", "systems", "services", "consulting", "enterprises"}
	shortCorporateSuffixes = []string{"inc", "corp", "llc", "ltd", "company"}
	suspiciousNameKeywords = []string{"easy", "fast", "quick", "instant", "guaranteed", "unlimited", "free",
		"home business", "work from home", "make money", "get rich"}
	scamNamePhrases = []string{"home business", "easy money", "work from home"}

	genericBusinessWords = []string{"consulting", "services", "solutions", "group", "company", "business",
		"enterprise", "corporation", "international"}
	scamBusinessPatterns = []string{"home business solutions", "easy money group", "financial freedom",
		"work from home company", "be your own boss", "unlimited income",
		"quick cash", "instant profit", "guaranteed success"}
	legitimateIndustryWords = []string{"technologies", "systems", "engineering", "medical", "healthcare",
		"education", "research", "development", "manufacturing", "finance",
		"law", "legal", "accounting", "architecture", "design"}
	commonNameWords = map[string]bool{"company": true, "business": true, "group": true, "services": true,
		"solutions": true, "consulting": true, "international": true, "global": true, "enterprise": true}
)

const nameSpecialChars = "!@#$%^&*()[]{}|;:,.<>?"

// analyzeOnlinePresence estimates online presence from the company name alone
func analyzeOnlinePresence(name string) types.OnlinePresence {
	p := types.OnlinePresence{
		ProfessionalIndicators: []string{},
		SuspiciousIndicators:   []string{},
	}
	if name == "" {
		return p
	}
	lower := strings.ToLower(name)
	words := strings.Fields(name)

	p.HasCorporateSuffix = containsAny(lower, corporateSuffixes)
	if p.HasCorporateSuffix {
		p.ProfessionalIndicators = append(p.ProfessionalIndicators, "Has corporate suffix")
	}

	lengthOK := len(words) >= 2 && len(words) <= 5 && len(name) >= 5 && len(name) <= 50
	if lengthOK {
		p.ProfessionalIndicators = append(p.ProfessionalIndicators, "Appropriate name length")
	}

	found := matchedPhrases(lower, suspiciousNameKeywords)
	p.ContainsSuspiciousKeywords = len(found) > 0
	for _, kw := range found {
		p.SuspiciousIndicators = append(p.SuspiciousIndicators, "Suspicious keyword: "+kw)
	}

	p.ProfessionalNaming = !strings.ContainsAny(name, nameSpecialChars)
	if p.ProfessionalNaming {
		p.ProfessionalIndicators = append(p.ProfessionalIndicators, "Professional naming convention")
	}

	score := 0
	if p.HasCorporateSuffix {
		score += 30
	}
	if lengthOK {
		score += 25
	}
	if !p.ContainsSuspiciousKeywords {
		score += 30
	}
	if p.ProfessionalNaming {
		score += 15
	}

	switch {
	case score >= 70:
		p.HasLinkedinLikelihood = true
		p.HasGlassdoorLikelihood = true
		p.HasOfficialWebsiteLikelihood = true
		p.ProfessionalIndicators = append(p.ProfessionalIndicators, "High likelihood of professional online presence")
	case score >= 50:
		p.HasLinkedinLikelihood = true
		p.HasOfficialWebsiteLikelihood = true
		p.ProfessionalIndicators = append(p.ProfessionalIndicators, "Moderate likelihood of online presence")
	case score >= 30:
		p.SuspiciousIndicators = append(p.SuspiciousIndicators, "Low likelihood of legitimate online presence")
	default:
		p.SuspiciousIndicators = append(p.SuspiciousIndicators, "Very low likelihood of legitimate presence")
	}

	present := 0
	for _, ok := range []bool{p.HasLinkedinLikelihood, p.HasGlassdoorLikelihood, p.HasOfficialWebsiteLikelihood} {
		if ok {
			present++
		}
	}
	p.SocialMediaPresenceScore = float64(present) / 3 * 100
	p.SearchResultsEstimated = estimateSearchResults(name)
	return p
}

// estimateSearchResults guesses how many search hits a company name would get
func estimateSearchResults(name string) int {
	if name == "" {
		return 0
	}
	words := len(strings.Fields(name))
	length := len(name)

	switch {
	case length > 30 || words > 4:
		return max(10, 50-(length-30)*2)
	case length < 5:
		return 20
	}

	estimate := float64(min(100+words*20, 500))
	lower := strings.ToLower(name)
	if containsAny(lower, shortCorporateSuffixes) {
		estimate *= 1.5
	}
	if containsAny(lower, scamNamePhrases) {
		estimate *= 0.3
	}
	return int(min(estimate, 1000))
}

// analyzeBusinessPatterns classifies the company name by industry and scam patterns
func analyzeBusinessPatterns(name string) types.BusinessPatterns {
	b := types.BusinessPatterns{
		CommonScamPatterns:     []string{},
		LegitimacyIndicators:   []string{},
		BusinessTypeLikelihood: "unknown",
	}
	if name == "" {
		return b
	}
	lower := strings.ToLower(name)

	b.AppearsGeneric = len(matchedPhrases(lower, genericBusinessWords)) >= 2
	b.CommonScamPatterns = matchedPhrases(lower, scamBusinessPatterns)
	b.LegitimacyIndicators = matchedPhrases(lower, legitimateIndustryWords)

	switch {
	case containsAny(lower, []string{"tech", "software", "systems", "digital", "cyber"}):
		b.BusinessTypeLikelihood = "technology"
	case containsAny(lower, []string{"health", "medical", "pharma", "bio"}):
		b.BusinessTypeLikelihood = "healthcare"
	case containsAny(lower, []string{"financial", "bank", "investment", "capital"}):
		b.BusinessTypeLikelihood = "financial"
	case containsAny(lower, []string{"consulting", "advisory", "services"}):
		b.BusinessTypeLikelihood = "services"
	case len(b.CommonScamPatterns) > 0:
		b.BusinessTypeLikelihood = "suspicious"
	}
	return b
}

// analyzeNameQuality scores how professional and distinctive a company name is
func analyzeNameQuality(name string) types.NameQuality {
	q := types.NameQuality{
		QualityFactors: []string{},
		QualityIssues:  []string{},
	}
	if name == "" {
		return q
	}
	words := strings.Fields(name)
	length := len(name)

	prefix := name
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	professional := []bool{
		length >= 3,
		length <= 50,
		strings.ToUpper(name) != name,
		strings.ToLower(name) != name,
		len(words) >= 2,
		!strings.ContainsFunc(prefix, unicode.IsDigit),
		!strings.ContainsAny(name, "!@#$%^&*()"),
	}
	q.ProfessionalScore = fraction(professional) * 100
	switch {
	case q.ProfessionalScore >= 80:
		q.QualityFactors = append(q.QualityFactors, "Professional naming convention")
	case q.ProfessionalScore < 50:
		q.QualityIssues = append(q.QualityIssues, "Unprofessional naming style")
	}

	completeness := []bool{
		strings.TrimSpace(name) != "",
		len(words) >= 2,
		containsAny(strings.ToLower(name), []string{"inc", "corp", "llc", "ltd", "co", "company", "group"}),
	}
	q.CompletenessScore = fraction(completeness) * 100
	switch {
	case q.CompletenessScore >= 70:
		q.QualityFactors = append(q.QualityFactors, "Complete business name with proper suffix")
	case q.CompletenessScore < 40:
		q.QualityIssues = append(q.QualityIssues, "Incomplete or informal business name")
	}

	if len(words) > 0 {
		unique := 0
		for _, w := range words {
			if !commonNameWords[strings.ToLower(w)] {
				unique++
			}
		}
		q.UniquenessScore = float64(unique) / float64(len(words)) * 100
	}
	switch {
	case q.UniquenessScore >= 60:
		q.QualityFactors = append(q.QualityFactors, "Distinctive and memorable name")
	case q.UniquenessScore < 30:
		q.QualityIssues = append(q.QualityIssues, "Very generic business name")
	}

	switch {
	case len(words) >= 2 && len(words) <= 3 && length >= 8 && length <= 25:
		q.MemorabilityScore = 85
		q.QualityFactors = append(q.QualityFactors, "Good length for memorability")
	case len(words) >= 1 && len(words) <= 4 && length >= 5 && length <= 35:
		q.MemorabilityScore = 65
	default:
		q.MemorabilityScore = 40
		q.QualityIssues = append(q.QualityIssues, "Name may be difficult to remember")
	}

	q.OverallQuality = q.ProfessionalScore*0.35 + q.CompletenessScore*0.25 +
		q.UniquenessScore*0.25 + q.MemorabilityScore*0.15
	return q
}

func fraction(checks []bool) float64 {
	if len(checks) == 0 {
		return 0
	}
	n := 0
	for _, ok := range checks {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(checks))
}
