package types

// TextStatistics holds readability metrics computed from a tokenized document
type TextStatistics struct {
	SentenceCount             int     `json:"sentence_count"`
	WordCount                 int     `json:"word_count"`
	AvgSentenceLength         float64 `json:"avg_sentence_length"`
	FleschReadingEase         float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade        float64 `json:"flesch_kincaid_grade"`
	AutomatedReadabilityIndex float64 `json:"automated_readability_index"`
	PerplexityScore           float64 `json:"perplexity_score"`
}

// AIPatterns holds five independent 0-100 heuristic scores
type AIPatterns struct {
	RepetitiveStructures float64 `json:"repetitive_structures"`
	PerfectGrammarScore  float64 `json:"perfect_grammar_score"`
	BuzzwordDensity      float64 `json:"buzzword_density"`
	SentenceUniformity   float64 `json:"sentence_uniformity"`
	TransitionOveruse    float64 `json:"transition_overuse"`
}

// KeywordAnalysis represents buzzword and adjective usage
type KeywordAnalysis struct {
	AIBuzzwordsFound    []string `json:"ai_buzzwords_found"`
	ExcessiveAdjectives []string `json:"excessive_adjectives"`
	BuzzwordCount       int      `json:"buzzword_count"`
	AdjectiveRatio      float64  `json:"adjective_ratio"`
}

// NewKeywordAnalysis returns a KeywordAnalysis with empty, non-nil lists
func NewKeywordAnalysis() KeywordAnalysis {
	return KeywordAnalysis{
		AIBuzzwordsFound:    []string{},
		ExcessiveAdjectives: []string{},
	}
}

// SuspiciousSection is a sentence flagged by one or more rules
type SuspiciousSection struct {
	Text           string   `json:"text"`
	SentenceNumber int      `json:"sentence_number"` // 1-indexed
	Reasons        []string `json:"reasons"`
}

// Ensemble method names
const (
	EnsembleMethodWeighted  = "weighted_average"
	EnsembleMethodRuleBased = "rule_based_only"
)

// ProcessingDetails records how a score was produced
type ProcessingDetails struct {
	RuleBasedCompleted   bool    `json:"rule_based_completed"`
	AIAnalysisAttempted  bool    `json:"ai_analysis_attempted"`
	AIAnalysisSuccessful bool    `json:"ai_analysis_successful"`
	EnsembleMethod       string  `json:"ensemble_method"`
	AIWeight             float64 `json:"ai_weight"`
	RuleWeight           float64 `json:"rule_weight"`
	FallbackReason       string  `json:"fallback_reason,omitempty"`
	AIModelUsed          string  `json:"ai_model_used,omitempty"`
}

// EnsembleInsights compares the rule-based and classifier scores
type EnsembleInsights struct {
	RuleBasedScore       float64 `json:"rule_based_score"`
	AIModelScore         float64 `json:"ai_model_score"`
	ScoreDifference      float64 `json:"score_difference"`
	MethodConsensus      string  `json:"method_consensus"`
	ReliabilityIndicator string  `json:"reliability_indicator"`
	ModelUsed            string  `json:"model_used"`
	ConfidenceBoost      float64 `json:"confidence_boost"`
}

// Analysis method names
const (
	AnalysisMethodEnsemble  = "ai_enhanced_ensemble"
	AnalysisMethodRuleBased = "rule_based_only"
)

// ResumeAnalysis is the full scoring output for one résumé
type ResumeAnalysis struct {
	AIProbability        float64             `json:"ai_probability"`
	ConfidenceLevel      string              `json:"confidence_level"`
	OverallConfidence    string              `json:"overall_confidence"`
	TextStatistics       TextStatistics      `json:"text_statistics"`
	AIPatterns           AIPatterns          `json:"ai_patterns"`
	KeywordAnalysis      KeywordAnalysis     `json:"keyword_analysis"`
	SuspiciousSections   []SuspiciousSection `json:"suspicious_sections"`
	Recommendations      []string            `json:"recommendations"`
	AnalysisMethod       string              `json:"analysis_method"`
	AIEnhanced           bool                `json:"ai_enhanced"`
	RuleBasedProbability float64             `json:"rule_based_probability"`
	ProcessingDetails    ProcessingDetails   `json:"processing_details"`
	EnsembleInsights     *EnsembleInsights   `json:"ensemble_insights,omitempty"`
}

// TrustComponents breaks the résumé trust score down by source
type TrustComponents struct {
	ResumeAuthenticity float64 `json:"resume_authenticity"`
	AIVerification     string  `json:"ai_verification"`
	VideoAuthenticity  string  `json:"video_authenticity"`
	AudioAuthenticity  string  `json:"audio_authenticity"`
}

// TrustScore is the résumé trust verdict
type TrustScore struct {
	OverallTrustScore    float64         `json:"overall_trust_score"`
	TrustLevel           string          `json:"trust_level"`
	Components           TrustComponents `json:"components"`
	Recommendation       string          `json:"recommendation"`
	NextSteps            []string        `json:"next_steps"`
	AIEnhancementApplied bool            `json:"ai_enhancement_applied"`
}

// FileInfo describes the submitted file, when there was one
type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
}

// Classification is the I/O contract of an external AI-text classifier
type Classification struct {
	AIProbability    float64 `json:"ai_probability"`    // 0-100
	HumanProbability float64 `json:"human_probability"` // 0-100
	Confidence       float64 `json:"confidence"`        // 0-1
	Model            string  `json:"model"`
	Method           string  `json:"method"`
	Cached           bool    `json:"cached"`
}

// AnalyzeResumeRequest is the HTTP body for résumé analysis
type AnalyzeResumeRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=255"`
	FileSize int64  `json:"file_size,omitempty" validate:"gte=0"`
}

// AnalyzeJobRequest is the HTTP body for job-posting analysis. Exactly one of
// Text, URL or Content must be set.
type AnalyzeJobRequest struct {
	Text             string      `json:"text,omitempty" validate:"required_without_all=URL Content"`
	URL              string      `json:"url,omitempty" validate:"omitempty,url"`
	Content          *JobContent `json:"content,omitempty"`
	ExtractionMethod string      `json:"extraction_method,omitempty" validate:"omitempty,oneof=web_scraping pdf_text ocr_image plain_text"`
}
