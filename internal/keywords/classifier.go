package keywords

import "strings"

// Relevance weights.
const (
	highPriorityScore = 10
	domainScore       = 2
)

// IsDomainRelated reports whether any domain term occurs in the lowercased
// title. Both single words and phrases are matched as substrings.
func (l *Lexicon) IsDomainRelated(title string) bool {
	lower := strings.ToLower(title)
	for _, hit := range substringHits(l.domainMatcher, l.domainTerms, lower) {
		if hit {
			return true
		}
	}
	return false
}

// ScoreRelevance adds 10 for every high-priority term and 2 for every domain
// term found in the title. A term present in both sets counts under each.
// Each term counts once regardless of how often it repeats.
func (l *Lexicon) ScoreRelevance(title string) int {
	lower := strings.ToLower(title)
	score := 0

	for _, hit := range substringHits(l.highMatcher, l.highPriority, lower) {
		if hit {
			score += highPriorityScore
		}
	}
	for _, hit := range substringHits(l.domainMatcher, l.domainTerms, lower) {
		if hit {
			score += domainScore
		}
	}

	return score
}

// IsDomainRelated checks title against the built-in lexicon.
func IsDomainRelated(title string) bool {
	return defaultLexicon.IsDomainRelated(title)
}

// ScoreRelevance scores title against the built-in lexicon.
func ScoreRelevance(title string) int {
	return defaultLexicon.ScoreRelevance(title)
}
