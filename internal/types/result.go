package types

// AnalysisType identifies which track produced a result
type AnalysisType string

const (
	AnalysisTypeResume AnalysisType = "resume"
	AnalysisTypeJob    AnalysisType = "job"
)

// Result statuses
const (
	StatusSuccess               = "success"
	StatusCompleted             = "completed"
	StatusCompletedWithWarnings = "completed_with_warnings"
)

// MVPVersion is reported with every résumé result
const MVPVersion = "2_ai_enhanced"

// AnalysisResult is the tagged variant returned by both analysis tracks.
// It is implemented only by *ResumeAnalysisResult and *JobAnalysisResult.
type AnalysisResult interface {
	Kind() AnalysisType
	isAnalysisResult()
}

// ResumeAnalysisResult is the response for one résumé
type ResumeAnalysisResult struct {
	Status              string         `json:"status"`
	AnalysisType        AnalysisType   `json:"analysis_type"`
	Analysis            ResumeAnalysis `json:"analysis"`
	TrustScore          TrustScore     `json:"trust_score"`
	MVPVersion          string         `json:"mvp_version"`
	FileInfo            *FileInfo      `json:"file_info,omitempty"`
	ProcessingTimestamp string         `json:"processing_timestamp"`
}

func NewResumeAnalysisResult(analysis ResumeAnalysis, trust TrustScore, file *FileInfo, timestamp string) *ResumeAnalysisResult {
	return &ResumeAnalysisResult{
		Status:              StatusSuccess,
		AnalysisType:        AnalysisTypeResume,
		Analysis:            analysis,
		TrustScore:          trust,
		MVPVersion:          MVPVersion,
		FileInfo:            file,
		ProcessingTimestamp: timestamp,
	}
}

func (*ResumeAnalysisResult) Kind() AnalysisType { return AnalysisTypeResume }
func (*ResumeAnalysisResult) isAnalysisResult()  {}

// JobAnalysisResult is the response for one job posting
type JobAnalysisResult struct {
	Status                string               `json:"status"`
	AnalysisType          AnalysisType         `json:"analysis_type"`
	AnalysisID            string               `json:"analysis_id"`
	InputType             string               `json:"input_type"`
	AnalysisTimestamp     string               `json:"analysis_timestamp"`
	JobContent            JobContent           `json:"job_content"`
	ContentAnalysis       ContentAnalysis      `json:"content_analysis"`
	CompanyVerification   *CompanyVerification `json:"company_verification,omitempty"`
	WebIntelligence       *WebIntelligence     `json:"web_intelligence,omitempty"`
	RedFlagAnalysis       RedFlagAnalysis      `json:"red_flag_analysis"`
	TrustScore            JobTrustScore        `json:"trust_score"`
	ProcessingDetails     JobProcessingDetails `json:"processing_details"`
	Errors                []string             `json:"errors"`
	Warnings              []string             `json:"warnings"`
	ProcessingTimeSeconds float64              `json:"processing_time_seconds"`
}

// NewJobAnalysisResult returns an empty job result with non-nil lists
func NewJobAnalysisResult(id, inputType, timestamp string) *JobAnalysisResult {
	return &JobAnalysisResult{
		Status:            StatusCompleted,
		AnalysisType:      AnalysisTypeJob,
		AnalysisID:        id,
		InputType:         inputType,
		AnalysisTimestamp: timestamp,
		Errors:            []string{},
		Warnings:          []string{},
	}
}

func (*JobAnalysisResult) Kind() AnalysisType { return AnalysisTypeJob }
func (*JobAnalysisResult) isAnalysisResult()  {}
