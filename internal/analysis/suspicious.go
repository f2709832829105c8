package analysis

import (
	"strings"

	"veracity/internal/lexicon"
	"veracity/internal/types"
)

// Suspicious-section rule codes
const (
	ReasonBuzzwordCluster   = "buzzword_cluster"
	ReasonDuplicateSentence = "duplicate_sentence"
	ReasonPersonShift       = "person_shift"
	ReasonTenseShift        = "tense_shift"
	ReasonTransitionOpening = "transition_opening"
	ReasonExcessiveLength   = "excessive_length"
)

const buzzwordClusterShare = 0.2

var (
	firstPerson = wordSet("i", "me", "my", "mine", "myself")
	thirdPerson = wordSet("he", "she", "him", "his", "her", "hers", "himself", "herself")
	pastMarkers = wordSet("was", "were", "had", "did")
	beMarkers   = wordSet("am", "is", "are")
	edNonVerbs  = wordSet("need", "speed", "seed", "feed", "bed", "red", "shed", "proceed", "exceed", "succeed", "indeed", "hundred", "embed")
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// FindSuspiciousSections evaluates every rule against each sentence in
// document order. Only sentences with at least one triggered rule are returned.
func FindSuspiciousSections(doc *Document, lex *lexicon.Lexicon) []types.SuspiciousSection {
	sections := []types.SuspiciousSection{}
	seen := make(map[string]struct{}, len(doc.Sentences))

	for i, s := range doc.Sentences {
		var reasons []string

		hits := len(buzzwordHits(s.Words, lex))
		if hits >= 2 || (hits > 0 && float64(hits)/float64(len(s.Words)) >= buzzwordClusterShare) {
			reasons = append(reasons, ReasonBuzzwordCluster)
		}

		body := normalizedSentence(s)
		if _, dup := seen[body]; dup {
			reasons = append(reasons, ReasonDuplicateSentence)
		}
		seen[body] = struct{}{}

		if hasPersonShift(s.Words) {
			reasons = append(reasons, ReasonPersonShift)
		}
		if hasTenseShift(s.Words) {
			reasons = append(reasons, ReasonTenseShift)
		}
		if lexicon.MatchPhrase(s.Words, 0, lex.Transitions()) > 0 {
			reasons = append(reasons, ReasonTransitionOpening)
		}
		if len(s.Words) > runOnWordLimit {
			reasons = append(reasons, ReasonExcessiveLength)
		}

		if len(reasons) > 0 {
			sections = append(sections, types.SuspiciousSection{
				Text:           s.Text,
				SentenceNumber: i + 1,
				Reasons:        reasons,
			})
		}
	}
	return sections
}

func hasPersonShift(words []string) bool {
	first, third := false, false
	for _, w := range words {
		first = first || inSet(firstPerson, w)
		third = third || inSet(thirdPerson, w)
	}
	return first && third
}

// hasTenseShift looks for a past-tense marker alongside a present
// progressive ("am/is/are" followed by an -ing word).
func hasTenseShift(words []string) bool {
	past, progressive := false, false
	for i, w := range words {
		if inSet(pastMarkers, w) || isPastParticiple(w) {
			past = true
		}
		if inSet(beMarkers, w) && i+1 < len(words) && strings.HasSuffix(words[i+1], "ing") && len(words[i+1]) > 4 {
			progressive = true
		}
	}
	return past && progressive
}

func isPastParticiple(w string) bool {
	return len(w) >= 5 && strings.HasSuffix(w, "ed") && !strings.ContainsAny(w, "'-") && !inSet(edNonVerbs, w)
}
