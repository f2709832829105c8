package types

// Extraction methods a job posting can arrive through
const (
	ExtractionWebScraping = "web_scraping"
	ExtractionPDFText     = "pdf_text"
	ExtractionOCRImage    = "ocr_image"
	ExtractionPlainText   = "plain_text"
)

// SalaryRange is the salary information extracted from a posting
type SalaryRange struct {
	Found        bool   `json:"found"`
	MinSalary    *int   `json:"min_salary,omitempty"`
	MaxSalary    *int   `json:"max_salary,omitempty"`
	Period       string `json:"period,omitempty"`
	RawText      string `json:"raw_text,omitempty"`
	IsSuspicious bool   `json:"is_suspicious"`
}

// ContactInfo is the contact information extracted from a posting
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// JobContent is a structured job posting
type JobContent struct {
	JobTitle          string      `json:"job_title"`
	CompanyName       string      `json:"company_name"`
	SalaryRange       SalaryRange `json:"salary_range"`
	Location          string      `json:"location"`
	JobDescription    string      `json:"job_description"`
	Requirements      []string    `json:"requirements"`
	ContactInfo       ContactInfo `json:"contact_info"`
	ApplicationMethod string      `json:"application_method"`
	PostingDate       string      `json:"posting_date"`
	RedFlagKeywords   []string    `json:"red_flag_keywords"`
	ExtractionMethod  string      `json:"extraction_method"`
	RawText           string      `json:"raw_text"`
	SourceURL         string      `json:"source_url,omitempty"`
	Domain            string      `json:"domain,omitempty"`
}

// Normalize replaces nil lists with empty ones. It is applied to content that
// arrives pre-structured from a caller.
func (c *JobContent) Normalize() {
	if c.Requirements == nil {
		c.Requirements = []string{}
	}
	if c.RedFlagKeywords == nil {
		c.RedFlagKeywords = []string{}
	}
	if c.ExtractionMethod == "" {
		c.ExtractionMethod = ExtractionPlainText
	}
}

// RedFlagDetection groups scam phrases found in a posting by category
type RedFlagDetection struct {
	TotalRedFlags     int                 `json:"total_red_flags"`
	CriticalRedFlags  []string            `json:"critical_red_flags"`
	WarningRedFlags   []string            `json:"warning_red_flags"`
	RedFlagCategories map[string][]string `json:"red_flag_categories"`
}

// UrgencyAnalysis describes pressure tactics in a posting
type UrgencyAnalysis struct {
	UrgencyLevel            string   `json:"urgency_level"`
	UrgencyPhrases          []string `json:"urgency_phrases"`
	PressureTacticsDetected bool     `json:"pressure_tactics_detected"`
}

type SalaryRealism struct {
	HasSalaryInfo  bool     `json:"has_salary_info"`
	IsRealistic    bool     `json:"is_realistic"`
	SuspicionLevel string   `json:"suspicion_level"`
	Warnings       []string `json:"warnings"`
}

type RequirementConsistency struct {
	HasRequirements   bool     `json:"has_requirements"`
	RequirementCount  int      `json:"requirement_count"`
	SpecificityScore  float64  `json:"specificity_score"`
	ConsistencyIssues []string `json:"consistency_issues"`
}

type DescriptionQuality struct {
	LengthAppropriate    bool     `json:"length_appropriate"`
	DetailLevel          string   `json:"detail_level"`
	ProfessionalLanguage bool     `json:"professional_language"`
	ClarityScore         float64  `json:"clarity_score"`
	QualityIssues        []string `json:"quality_issues"`
}

type ContactLegitimacy struct {
	HasEmail                 bool     `json:"has_email"`
	HasPhone                 bool     `json:"has_phone"`
	HasWebsite               bool     `json:"has_website"`
	EmailProfessional        bool     `json:"email_professional"`
	ContactCompletenessScore float64  `json:"contact_completeness_score"`
	LegitimacyIndicators     []string `json:"legitimacy_indicators"`
	RedFlags                 []string `json:"red_flags"`
}

// PatternAnalysis holds the structural checks run over a posting
type PatternAnalysis struct {
	SalaryRealism          SalaryRealism          `json:"salary_realism"`
	RequirementConsistency RequirementConsistency `json:"requirement_consistency"`
	DescriptionQuality     DescriptionQuality     `json:"description_quality"`
	ContactLegitimacy      ContactLegitimacy      `json:"contact_legitimacy"`
	UrgencyIndicators      UrgencyAnalysis        `json:"urgency_indicators"`
	VaguenessScore         float64                `json:"vagueness_score"`
}

type QualityAssessment struct {
	CompletenessScore    float64  `json:"completeness_score"`
	ProfessionalismScore float64  `json:"professionalism_score"`
	ClarityScore         float64  `json:"clarity_score"`
	OverallQualityScore  float64  `json:"overall_quality_score"`
	QualityIssues        []string `json:"quality_issues"`
}

// ContentAIDetection is the ensemble verdict on the posting text
type ContentAIDetection struct {
	AIProbability        float64           `json:"ai_probability"`
	RuleBasedProbability float64           `json:"rule_based_probability"`
	ConfidenceLevel      string            `json:"confidence_level"`
	AIEnhanced           bool              `json:"ai_enhanced"`
	ProcessingDetails    ProcessingDetails `json:"processing_details"`
}

// ContentAnalysis is the analysis of the posting text itself
type ContentAnalysis struct {
	Success             bool               `json:"success"`
	AIDetection         ContentAIDetection `json:"ai_detection"`
	PatternAnalysis     PatternAnalysis    `json:"pattern_analysis"`
	QualityAssessment   QualityAssessment  `json:"quality_assessment"`
	RedFlagDetection    RedFlagDetection   `json:"red_flag_detection"`
	OverallContentScore float64            `json:"overall_content_score"`
	Error               string             `json:"error,omitempty"`
}

// DomainAnalysis is the registration view of a company domain
type DomainAnalysis struct {
	Domain         string   `json:"domain"`
	IsRegistered   bool     `json:"is_registered"`
	AgeDays        *int     `json:"age_days,omitempty"`
	Registrar      string   `json:"registrar,omitempty"`
	CreationDate   string   `json:"creation_date,omitempty"`
	ExpirationDate string   `json:"expiration_date,omitempty"`
	IsSuspicious   bool     `json:"is_suspicious"`
	Nameservers    []string `json:"nameservers"`
	Addresses      []string `json:"addresses"`
	Note           string   `json:"note,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// DomainReputation is the HTTP-probe view of a company domain
type DomainReputation struct {
	Domain              string          `json:"domain"`
	SSLCertificate      bool            `json:"ssl_certificate"`
	SecurityHeaders     map[string]bool `json:"security_headers"`
	PageAccessible      bool            `json:"page_accessible"`
	RedirectChain       []string        `json:"redirect_chain"`
	SuspiciousRedirects bool            `json:"suspicious_redirects"`
	ReputationScore     float64         `json:"reputation_score"`
	Error               string          `json:"error,omitempty"`
}

type OnlinePresence struct {
	SearchResultsEstimated       int      `json:"search_results_estimated"`
	HasLinkedinLikelihood        bool     `json:"has_linkedin_likelihood"`
	HasGlassdoorLikelihood       bool     `json:"has_glassdoor_likelihood"`
	HasOfficialWebsiteLikelihood bool     `json:"has_official_website_likelihood"`
	SocialMediaPresenceScore     float64  `json:"social_media_presence_score"`
	HasCorporateSuffix           bool     `json:"has_corporate_suffix"`
	ContainsSuspiciousKeywords   bool     `json:"contains_suspicious_keywords"`
	ProfessionalNaming           bool     `json:"professional_naming"`
	ProfessionalIndicators       []string `json:"professional_presence_indicators"`
	SuspiciousIndicators         []string `json:"suspicious_indicators"`
}

type BusinessPatterns struct {
	AppearsGeneric         bool     `json:"appears_generic"`
	CommonScamPatterns     []string `json:"common_scam_patterns"`
	LegitimacyIndicators   []string `json:"legitimacy_indicators"`
	BusinessTypeLikelihood string   `json:"business_type_likelihood"`
}

type NameQuality struct {
	ProfessionalScore float64  `json:"professional_score"`
	CompletenessScore float64  `json:"completeness_score"`
	UniquenessScore   float64  `json:"uniqueness_score"`
	MemorabilityScore float64  `json:"memorability_score"`
	OverallQuality    float64  `json:"overall_quality"`
	QualityFactors    []string `json:"quality_factors"`
	QualityIssues     []string `json:"quality_issues"`
}

type VerificationDetails struct {
	DomainAnalysis   *DomainAnalysis   `json:"domain_analysis,omitempty"`
	DomainReputation *DomainReputation `json:"domain_reputation,omitempty"`
	OnlinePresence   OnlinePresence    `json:"online_presence"`
	BusinessPatterns BusinessPatterns  `json:"business_patterns"`
	NameQuality      NameQuality       `json:"name_quality"`
}

// CompanyVerification is the legitimacy verdict on the hiring company
type CompanyVerification struct {
	CompanyName            string              `json:"company_name"`
	CompanyDomain          string              `json:"company_domain,omitempty"`
	Success                bool                `json:"success"`
	OverallLegitimacyScore float64             `json:"overall_legitimacy_score"`
	VerificationDetails    VerificationDetails `json:"verification_details"`
	RedFlags               []string            `json:"red_flags"`
	GreenFlags             []string            `json:"green_flags"`
	Error                  string              `json:"error,omitempty"`
	AnalysisTimestamp      string              `json:"analysis_timestamp"`
}

// WebDomainAnalysis is the page-quality view of the company website
type WebDomainAnalysis struct {
	Domain              string   `json:"domain,omitempty"`
	IsAccessible        bool     `json:"is_accessible"`
	HasSSL              bool     `json:"has_ssl"`
	ProfessionalDesign  bool     `json:"professional_design"`
	ContactInfoPresent  bool     `json:"contact_info_present"`
	CareersPageExists   bool     `json:"careers_page_exists"`
	ContentQualityScore float64  `json:"content_quality_score"`
	SuspiciousElements  []string `json:"suspicious_elements"`
	Note                string   `json:"note,omitempty"`
	Error               string   `json:"error,omitempty"`
}

type SocialMediaPresence struct {
	EstimatedLinkedinPresence bool    `json:"estimated_linkedin_presence"`
	EstimatedFacebookPresence bool    `json:"estimated_facebook_presence"`
	EstimatedTwitterPresence  bool    `json:"estimated_twitter_presence"`
	SocialMediaScore          float64 `json:"social_media_score"`
	AnalysisMethod            string  `json:"analysis_method"`
}

type ReviewAnalysis struct {
	ReviewAvailability   string   `json:"review_availability"`
	EstimatedRating      *float64 `json:"estimated_rating,omitempty"`
	ReviewCountEstimate  int      `json:"review_count_estimate"`
	ReputationIndicators []string `json:"reputation_indicators"`
	WarningIndicators    []string `json:"warning_indicators"`
	AnalysisMethod       string   `json:"analysis_method"`
}

type JobBoardPresence struct {
	LikelyOnMajorBoards   bool     `json:"likely_on_major_boards"`
	EstimatedJobCount     int      `json:"estimated_job_count"`
	BoardCredibilityScore float64  `json:"board_credibility_score"`
	PresenceIndicators    []string `json:"presence_indicators"`
}

type URLSecurityIndicators struct {
	UsesHTTPS               bool `json:"uses_https"`
	HasSuspiciousSubdomains bool `json:"has_suspicious_subdomains"`
	ContainsIPAddress       bool `json:"contains_ip_address"`
}

type SourceURLAnalysis struct {
	SourceURL            string                `json:"source_url,omitempty"`
	DomainCredibility    float64               `json:"domain_credibility"`
	IsLegitimateJobBoard bool                  `json:"is_legitimate_job_board"`
	URLStructureQuality  float64               `json:"url_structure_quality"`
	SecurityIndicators   URLSecurityIndicators `json:"security_indicators"`
	CredibilityFactors   []string              `json:"credibility_factors"`
	WarningSigns         []string              `json:"warning_signs"`
	Error                string                `json:"error,omitempty"`
}

// WebIntelligence is the web-presence verdict on the hiring company
type WebIntelligence struct {
	CompanyName           string              `json:"company_name"`
	Success               bool                `json:"success"`
	DomainAnalysis        WebDomainAnalysis   `json:"domain_analysis"`
	SocialMediaPresence   SocialMediaPresence `json:"social_media_presence"`
	ReviewAnalysis        ReviewAnalysis      `json:"review_analysis"`
	JobBoardPresence      JobBoardPresence    `json:"job_board_presence"`
	SourceURLAnalysis     SourceURLAnalysis   `json:"source_url_analysis"`
	OverallWebCredibility float64             `json:"overall_web_credibility"`
	CredibilityFactors    []string            `json:"credibility_factors"`
	WarningSigns          []string            `json:"warning_signs"`
	Error                 string              `json:"error,omitempty"`
	AnalysisTimestamp     string              `json:"analysis_timestamp"`
}

// RedFlagAnalysis is the compiled list of red flags across all steps
type RedFlagAnalysis struct {
	ContentRedFlags    []string `json:"content_red_flags"`
	CompanyRedFlags    []string `json:"company_red_flags"`
	WebRedFlags        []string `json:"web_red_flags"`
	ScamPatternMatches []string `json:"scam_pattern_matches"`
}

// Total returns the number of red flags across all groups
func (r RedFlagAnalysis) Total() int {
	return len(r.ContentRedFlags) + len(r.CompanyRedFlags) + len(r.WebRedFlags) + len(r.ScamPatternMatches)
}

// Job trust component names
const (
	ComponentContentAuthenticity = "content_authenticity"
	ComponentCompanyLegitimacy   = "company_legitimacy"
	ComponentWebIntelligence     = "web_intelligence"
	ComponentPostingSource       = "posting_source"
	ComponentRedFlagAnalysis     = "red_flag_analysis"
)

// ComponentScore is one weighted input to the job trust score
type ComponentScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Success      bool    `json:"success"`
}

// JobTrustScore is the job-posting trust verdict
type JobTrustScore struct {
	OverallTrustScore    float64                   `json:"overall_trust_score"`
	TrustLevel           string                    `json:"trust_level"`
	RiskAssessment       string                    `json:"risk_assessment"`
	ComponentBreakdown   map[string]ComponentScore `json:"component_breakdown"`
	Recommendations      []string                  `json:"recommendations"`
	NextSteps            []string                  `json:"next_steps"`
	AnalysisSummary      string                    `json:"analysis_summary"`
	CalculationTimestamp string                    `json:"calculation_timestamp"`
}

// JobProcessingDetails records which pipeline steps succeeded
type JobProcessingDetails struct {
	ContentExtractionSuccessful   bool `json:"content_extraction_successful"`
	ContentAnalysisSuccessful     bool `json:"content_analysis_successful"`
	CompanyVerificationSuccessful bool `json:"company_verification_successful"`
	WebIntelligenceSuccessful     bool `json:"web_intelligence_successful"`
	TrustCalculationSuccessful    bool `json:"trust_calculation_successful"`
}
