package ai

import "fmt"

// DefaultSystemPrompt instructs the model to act as an AI-text detector
const DefaultSystemPrompt = `You are a forensic linguist who detects machine-generated writing in résumés and job postings.

Judge only the text you are given. Consider:
- Uniform sentence length and rhythm
- Generic, interchangeable phrasing and stacked buzzwords
- Absence of concrete names, numbers, dates and specific outcomes
- Overly polished transitions and list structures typical of language models

Respond with JSON only. ai_probability is a number from 0 to 100 giving the likelihood that the text was written by a language model. confidence is a number from 0 to 1 describing how certain you are.`

const userPromptTemplate = `Classify the following text.

<text>
%s
</text>`

// buildUserPrompt wraps the candidate text for the classifier
func buildUserPrompt(text string) string {
	return fmt.Sprintf(userPromptTemplate, text)
}

// resolvePrompt returns the configured system prompt, or the default
func resolvePrompt(configured string) string {
	if configured != "" {
		return configured
	}
	return DefaultSystemPrompt
}
