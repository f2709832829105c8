package jobs

import (
	"context"
	"fmt"
	"math"
	"strings"

	"veracity/internal/ensemble"
	"veracity/internal/errors"
	"veracity/internal/types"
)

// Red-flag categories reported by content analysis
const (
	CategoryFinancialScam       = "financial_scam"
	CategoryMLMPyramid          = "mlm_pyramid"
	CategoryDataHarvesting      = "data_harvesting"
	CategoryFakeCompany         = "fake_company"
	CategoryUnrealisticPromises = "unrealistic_promises"
)

type redFlagCategory struct {
	name     string
	label    string
	critical bool
	phrases  []string
}

var redFlagCategories = []redFlagCategory{
	{
		name: CategoryFinancialScam, label: "Financial scam indicator", critical: true,
		phrases: []string{"pay upfront fee", "training fee required", "starter kit cost",
			"wire transfer", "western union", "send money", "processing fee"},
	},
	{
		name: CategoryMLMPyramid, label: "MLM/Pyramid indicator",
		phrases: []string{"unlimited earning potential", "be your own boss", "financial freedom",
			"recruit others", "build your team", "residual income", "pyramid", "mlm"},
	},
	{
		name: CategoryDataHarvesting, label: "Data harvesting", critical: true,
		phrases: []string{"provide ssn", "social security", "bank details", "credit check",
			"background check fee", "identity verification fee"},
	},
	{
		name: CategoryFakeCompany, label: "Fake company indicator",
		phrases: []string{"newly established", "startup opportunity", "no experience necessary",
			"work from anywhere", "flexible schedule guaranteed"},
	},
	{
		name: CategoryUnrealisticPromises, label: "Unrealistic promise", critical: true,
		phrases: []string{"guaranteed income", "make thousands weekly", "easy money",
			"no work required", "earn while you sleep", "get rich quick"},
	},
}

var (
	urgencyPhrases = []string{
		"urgent hiring", "immediate start", "apply today", "limited positions",
		"act now", "don't miss out", "limited time", "hire immediately",
		"start asap", "urgent need", "apply now",
	}
	suspiciousSalaryPhrases = []string{
		"make thousands weekly", "unlimited earning potential",
		"guaranteed income", "earn up to $5000/week",
	}
	specificRequirementHints = []string{"years of experience", "degree", "certification",
		"specific software", "programming language"}
	vagueRequirementHints = []string{"good communication", "team player", "motivated", "enthusiastic"}

	unprofessionalDescriptionHints = []string{"easy money", "get rich", "no work required", "!!!", "URGENT", "ASAP"}
	unprofessionalPostingHints     = []string{"!!!", "URGENT", "easy money", "get rich", "work from home guaranteed"}

	vagueTitles = []string{"data entry", "work from home", "general assistant", "various positions"}

	professionalEmailHints = []string{"gmail.com", "outlook.com", "yahoo.com", "company.com", ".org", ".edu"}
	temporaryEmailHints    = []string{"tempmail", "10minutemail", "guerrillamail"}
)

// Detector scores how likely a text is machine-generated
type Detector interface {
	Detect(ctx context.Context, text string) (*ensemble.Detection, error)
}

// ContentAnalyzer inspects the text of a job posting
type ContentAnalyzer struct {
	detector Detector
	logger   *errors.Logger
}

// NewContentAnalyzer creates a content analyzer. A nil detector disables
// the AI-generation check.
func NewContentAnalyzer(detector Detector, logger *errors.Logger) *ContentAnalyzer {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &ContentAnalyzer{detector: detector, logger: logger}
}

// Analyze runs AI detection, pattern analysis, quality assessment and red-flag
// detection over the posting. Only context cancellation is returned as an
// error; other failures mark the analysis unsuccessful.
func (c *ContentAnalyzer) Analyze(ctx context.Context, content *types.JobContent) (types.ContentAnalysis, error) {
	result := types.ContentAnalysis{
		Success:           true,
		PatternAnalysis:   analyzePatterns(content),
		QualityAssessment: assessQuality(content),
		RedFlagDetection:  detectRedFlags(content.RawText),
	}
	result.AIDetection.ProcessingDetails.EnsembleMethod = types.EnsembleMethodRuleBased

	if c.detector != nil {
		d, err := c.detector.Detect(ctx, content.RawText)
		switch {
		case err != nil && ctx.Err() != nil:
			return result, ctx.Err()
		case err != nil:
			c.logger.LogError(err, "Job content detection failed")
			result.Success = false
			result.Error = err.Error()
		default:
			result.AIDetection = types.ContentAIDetection{
				AIProbability:        d.Fusion.Probability,
				RuleBasedProbability: d.Fusion.RuleProbability,
				ConfidenceLevel:      d.ConfidenceLevel,
				AIEnhanced:           d.Fusion.AIEnhanced,
				ProcessingDetails:    d.Fusion.Details,
			}
		}
	}

	result.OverallContentScore = contentScore(result)
	return result, nil
}

func analyzePatterns(content *types.JobContent) types.PatternAnalysis {
	return types.PatternAnalysis{
		SalaryRealism:          salaryRealism(content.SalaryRange),
		RequirementConsistency: requirementConsistency(content.Requirements),
		DescriptionQuality:     descriptionQuality(content.JobDescription),
		ContactLegitimacy:      contactLegitimacy(content.ContactInfo),
		UrgencyIndicators:      detectUrgency(content.RawText),
		VaguenessScore:         vaguenessScore(content),
	}
}

func salaryRealism(salary types.SalaryRange) types.SalaryRealism {
	r := types.SalaryRealism{
		HasSalaryInfo:  salary.Found,
		IsRealistic:    true,
		SuspicionLevel: "low",
		Warnings:       []string{},
	}
	if salary.IsSuspicious {
		r.IsRealistic = false
		r.SuspicionLevel = "high"
		r.Warnings = append(r.Warnings, "Salary appears unrealistically high")
	}
	for _, phrase := range matchedPhrases(strings.ToLower(salary.RawText), suspiciousSalaryPhrases) {
		r.Warnings = append(r.Warnings, "Contains suspicious phrase: "+phrase)
		r.SuspicionLevel = "high"
	}
	return r
}

func requirementConsistency(requirements []string) types.RequirementConsistency {
	r := types.RequirementConsistency{
		HasRequirements:   len(requirements) > 0,
		RequirementCount:  len(requirements),
		ConsistencyIssues: []string{},
	}
	if len(requirements) == 0 {
		r.ConsistencyIssues = append(r.ConsistencyIssues, "No specific requirements listed")
		return r
	}

	specific, vague := 0, 0
	for _, req := range requirements {
		lower := strings.ToLower(req)
		if containsAny(lower, specificRequirementHints) {
			specific++
		}
		if containsAny(lower, vagueRequirementHints) {
			vague++
		}
	}
	r.SpecificityScore = float64(specific) / float64(len(requirements)) * 100
	if vague > specific {
		r.ConsistencyIssues = append(r.ConsistencyIssues, "Requirements are too vague")
	}
	return r
}

func descriptionQuality(description string) types.DescriptionQuality {
	q := types.DescriptionQuality{
		DetailLevel:          "insufficient",
		ProfessionalLanguage: true,
		QualityIssues:        []string{},
	}
	if strings.TrimSpace(description) == "" {
		q.QualityIssues = append(q.QualityIssues, "No job description provided")
		return q
	}

	words := len(strings.Fields(description))
	if words > 50 {
		q.LengthAppropriate = true
		switch {
		case words > 200:
			q.DetailLevel = "detailed"
		case words > 100:
			q.DetailLevel = "adequate"
		}
	} else {
		q.QualityIssues = append(q.QualityIssues, "Job description is too brief")
	}

	lower := strings.ToLower(description)
	for _, hint := range unprofessionalDescriptionHints {
		if strings.Contains(lower, strings.ToLower(hint)) {
			q.ProfessionalLanguage = false
			q.QualityIssues = append(q.QualityIssues, "Contains unprofessional language: "+hint)
		}
	}

	sentences := strings.Split(description, ".")
	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	avg := float64(total) / float64(len(sentences))
	if avg < 30 {
		q.ClarityScore = math.Min(90, avg*3)
	} else {
		q.ClarityScore = math.Max(30, 90-(avg-30))
	}
	return q
}

func contactLegitimacy(contact types.ContactInfo) types.ContactLegitimacy {
	c := types.ContactLegitimacy{
		HasEmail:             contact.Email != "",
		HasPhone:             contact.Phone != "",
		HasWebsite:           contact.Website != "",
		LegitimacyIndicators: []string{},
		RedFlags:             []string{},
	}
	if email := strings.ToLower(contact.Email); email != "" {
		if containsAny(email, professionalEmailHints) || !freeMailDomains[emailDomain(email)] {
			c.EmailProfessional = true
			c.LegitimacyIndicators = append(c.LegitimacyIndicators, "Professional email domain")
		}
		if containsAny(email, temporaryEmailHints) {
			c.EmailProfessional = false
			c.RedFlags = append(c.RedFlags, "Suspicious/temporary email domain")
		}
	}

	present := 0
	for _, ok := range []bool{c.HasEmail, c.HasPhone, c.HasWebsite} {
		if ok {
			present++
		}
	}
	c.ContactCompletenessScore = float64(present) / 3 * 100
	return c
}

func emailDomain(email string) string {
	if at := strings.LastIndexByte(email, '@'); at >= 0 {
		return email[at+1:]
	}
	return ""
}

func detectUrgency(text string) types.UrgencyAnalysis {
	found := matchedPhrases(strings.ToLower(text), urgencyPhrases)
	u := types.UrgencyAnalysis{
		UrgencyLevel:   "low",
		UrgencyPhrases: found,
	}
	switch {
	case len(found) >= 3:
		u.UrgencyLevel = "high"
		u.PressureTacticsDetected = true
	case len(found) >= 1:
		u.UrgencyLevel = "moderate"
	}
	return u
}

func vaguenessScore(content *types.JobContent) float64 {
	score := 0.0
	if content.JobTitle == "" {
		score += 25
	} else if containsAny(strings.ToLower(content.JobTitle), vagueTitles) {
		score += 20
	}
	if len(content.CompanyName) < 3 {
		score += 20
	}
	if len(strings.Fields(content.JobDescription)) < 50 {
		score += 15
	}
	if len(content.Requirements) < 2 {
		score += 15
	}
	if content.Location == "" || strings.Contains(strings.ToLower(content.Location), "remote") {
		score += 10
	}
	return math.Min(100, score)
}

func assessQuality(content *types.JobContent) types.QualityAssessment {
	q := types.QualityAssessment{QualityIssues: []string{}}

	present := 0
	for _, ok := range []bool{
		content.JobTitle != "",
		content.CompanyName != "",
		content.JobDescription != "",
		len(content.Requirements) > 0,
	} {
		if ok {
			present++
		}
	}
	q.CompletenessScore = float64(present) / 4 * 100

	lower := strings.ToLower(content.RawText)
	penalty := 0.0
	for _, hint := range unprofessionalPostingHints {
		if strings.Contains(lower, strings.ToLower(hint)) {
			penalty += 5
		}
	}
	q.ProfessionalismScore = math.Max(0, 100-penalty)

	descClarity, reqClarity := 30.0, 30.0
	if len(strings.Fields(content.JobDescription)) > 50 {
		descClarity = 70
	}
	if len(content.Requirements) > 2 {
		reqClarity = 70
	}
	q.ClarityScore = (descClarity + reqClarity) / 2

	q.OverallQualityScore = q.CompletenessScore*0.4 + q.ProfessionalismScore*0.3 + q.ClarityScore*0.3

	if q.CompletenessScore < 75 {
		q.QualityIssues = append(q.QualityIssues, "Missing important job details")
	}
	if q.ProfessionalismScore < 70 {
		q.QualityIssues = append(q.QualityIssues, "Unprofessional language detected")
	}
	if q.ClarityScore < 50 {
		q.QualityIssues = append(q.QualityIssues, "Job description lacks clarity")
	}
	return q
}

func detectRedFlags(text string) types.RedFlagDetection {
	d := types.RedFlagDetection{
		CriticalRedFlags:  []string{},
		WarningRedFlags:   []string{},
		RedFlagCategories: make(map[string][]string, len(redFlagCategories)),
	}
	lower := strings.ToLower(text)
	for _, category := range redFlagCategories {
		found := matchedPhrases(lower, category.phrases)
		d.RedFlagCategories[category.name] = found
		for _, phrase := range found {
			flag := fmt.Sprintf("%s: %s", category.label, phrase)
			if category.critical {
				d.CriticalRedFlags = append(d.CriticalRedFlags, flag)
			} else {
				d.WarningRedFlags = append(d.WarningRedFlags, flag)
			}
		}
	}
	d.TotalRedFlags = len(d.CriticalRedFlags) + len(d.WarningRedFlags)
	return d
}

// contentScore starts from the quality score and subtracts for machine
// generation, red flags, pressure tactics and vagueness
func contentScore(a types.ContentAnalysis) float64 {
	score := a.QualityAssessment.OverallQualityScore
	if a.AIDetection.AIEnhanced && a.AIDetection.AIProbability > 70 {
		score -= 20
	}
	score -= float64(len(a.RedFlagDetection.CriticalRedFlags))*15 + float64(len(a.RedFlagDetection.WarningRedFlags))*5
	if a.PatternAnalysis.UrgencyIndicators.PressureTacticsDetected {
		score -= 10
	}
	score -= a.PatternAnalysis.VaguenessScore * 0.2
	return math.Max(0, math.Min(100, score))
}

// CompileRedFlags gathers red flags from every pipeline step
func CompileRedFlags(content types.ContentAnalysis, company *types.CompanyVerification, web *types.WebIntelligence) types.RedFlagAnalysis {
	r := types.RedFlagAnalysis{
		ContentRedFlags:    []string{},
		CompanyRedFlags:    []string{},
		WebRedFlags:        []string{},
		ScamPatternMatches: []string{},
	}
	r.ContentRedFlags = append(r.ContentRedFlags, content.RedFlagDetection.CriticalRedFlags...)
	r.ContentRedFlags = append(r.ContentRedFlags, content.RedFlagDetection.WarningRedFlags...)
	if company != nil {
		r.CompanyRedFlags = append(r.CompanyRedFlags, company.RedFlags...)
	}
	if web != nil {
		r.WebRedFlags = append(r.WebRedFlags, web.WarningSigns...)
	}
	for _, category := range redFlagCategories {
		for _, phrase := range content.RedFlagDetection.RedFlagCategories[category.name] {
			r.ScamPatternMatches = append(r.ScamPatternMatches, category.name+": "+phrase)
		}
	}
	return r
}
