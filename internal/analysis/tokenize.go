// Package analysis implements the deterministic, rule-based side of AI-text
// detection: text statistics, pattern heuristics, keyword analysis,
// suspicious-section flagging and the weighted rule score.
package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"veracity/internal/errors"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['\-][\p{L}\p{N}]+)*`)

// Sentence is one tokenized sentence
type Sentence struct {
	Text  string   // trimmed source text
	Words []string // lowercase word tokens
}

// Document is a tokenized text. It is read-only once built.
type Document struct {
	Text      string
	Sentences []Sentence
	Words     []string
}

// ValidateText returns an EmptyInputError when text has no content
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NewEmptyInputError()
	}
	return nil
}

// Tokenize splits text into sentences and lowercase word tokens. Text without
// any word token is treated as empty.
func Tokenize(text string) (*Document, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	doc := &Document{Text: text}
	for _, raw := range splitSentences(text) {
		words := tokenizeWords(raw)
		if len(words) == 0 {
			continue
		}
		doc.Sentences = append(doc.Sentences, Sentence{Text: raw, Words: words})
		doc.Words = append(doc.Words, words...)
	}

	if len(doc.Words) == 0 {
		return nil, errors.NewEmptyInputError()
	}
	return doc, nil
}

func tokenizeWords(s string) []string {
	s = strings.ReplaceAll(s, "’", "'")
	matches := wordPattern.FindAllString(s, -1)
	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = strings.ToLower(m)
	}
	return words
}

// splitSentences breaks text at runs of terminators followed by whitespace or
// end of text, and at line breaks. Terminators inside tokens such as "3.5" or
// "example.com" do not end a sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	flush := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush(i)
			start = i + 1
			continue
		}
		if !isTerminator(r) {
			continue
		}
		j := i
		for j+1 < len(runes) && isTerminator(runes[j+1]) {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			flush(j + 1)
		}
		i = j
	}
	flush(len(runes))
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// endsWithTerminator reports whether a trimmed sentence ends with . ! or ?,
// ignoring closing quotes and brackets.
func endsWithTerminator(s string) bool {
	s = strings.TrimRight(s, "\"')]”’")
	if s == "" {
		return false
	}
	r := []rune(s)
	return isTerminator(r[len(r)-1])
}

// startsCapitalized reports whether the first letter of s is uppercase.
// Bullet markers and digits before the first letter are skipped.
func startsCapitalized(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}
