// Package ensemble fuses the rule-based probability with an optional
// external classifier score into one explainable result.
package ensemble

// Outcome is the result of consulting the external classifier. It is either
// Success or Failure; classifier errors are values, never panics or fatal errors.
type Outcome interface {
	isOutcome()
}

// Success carries a classifier score in [0,100]
type Success struct {
	Score      float64
	Model      string
	Confidence float64 // 0-1, as reported by the classifier
}

// Failure records why no classifier score is available. Attempted is false
// when the classifier was never called (disabled or unconfigured).
type Failure struct {
	Reason    string
	Attempted bool
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}

// Fallback reasons used when the classifier is not called
const (
	ReasonDisabled         = "AI detection disabled in configuration"
	ReasonMissingAPIKey    = "API key not configured"
	ReasonUnknownOutcome   = "unknown classifier outcome"
	ReasonClassifierFailed = "AI service unavailable"
)
