package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extraction weights and bounds.
const (
	highPriorityBoost = 5 // high-priority term present in the title
	compoundBoost     = 3 // multi-word domain term present in the title
	highPriorityWord  = 4
	domainWord        = 2
	plainWord         = 1

	minTopicCount = 2
	maxTopics     = 15
	minWeight     = 0.3
	minWordLength = 3
)

var nonWordChars = regexp.MustCompile(`[^\w\s-]`)

// TrendingTopic is one ranked entry of the topic cloud.
type TrendingTopic struct {
	Term           string  `json:"term"`
	Count          int     `json:"count"`
	Weight         float64 `json:"weight"`
	IsHighPriority bool    `json:"isHighPriority"`
}

// termCounter accumulates weights and remembers first-insertion order, which
// breaks ties when ranking.
type termCounter struct {
	counts map[string]int
	order  []string
}

func (c *termCounter) add(term string, weight int) {
	if _, ok := c.counts[term]; !ok {
		c.order = append(c.order, term)
	}
	c.counts[term] += weight
}

// ExtractTrendingTopics ranks recurring terms across a batch of titles.
// It returns at most 15 topics with count >= 2, ordered by count with ties
// kept in first-seen order. The result is never nil.
func (l *Lexicon) ExtractTrendingTopics(titles []string) []TrendingTopic {
	counter := &termCounter{counts: make(map[string]int)}

	for _, title := range titles {
		lowerTitle := strings.ToLower(title)
		words := tokenize(lowerTitle)
		matched := make(map[string]struct{})

		// High-priority terms claim the title first, phrases included.
		hpHits := substringHits(l.highMatcher, l.highPriority, lowerTitle)
		for i, term := range l.highPriority {
			if hpHits[i] {
				counter.add(term, highPriorityBoost)
				matched[term] = struct{}{}
			}
		}

		domainHits := substringHits(l.domainMatcher, l.domainTerms, lowerTitle)
		for i, term := range l.domainTerms {
			if !domainHits[i] || !strings.Contains(term, " ") {
				continue
			}
			if _, done := matched[term]; done {
				continue
			}
			counter.add(term, compoundBoost)
		}

		for _, word := range words {
			if _, stop := l.stopWords[word]; stop {
				continue
			}
			if _, done := matched[word]; done {
				continue
			}
			boost := plainWord
			if _, ok := l.highSet[word]; ok {
				boost = highPriorityWord
			} else if _, ok := l.domainSet[word]; ok {
				boost = domainWord
			}
			counter.add(word, boost)
		}
	}

	ranked := make([]string, 0, len(counter.order))
	for _, term := range counter.order {
		if counter.counts[term] >= minTopicCount {
			ranked = append(ranked, term)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counter.counts[ranked[i]] > counter.counts[ranked[j]]
	})
	if len(ranked) > maxTopics {
		ranked = ranked[:maxTopics]
	}

	topics := make([]TrendingTopic, 0, len(ranked))
	if len(ranked) == 0 {
		return topics
	}

	maxCount := float64(counter.counts[ranked[0]])
	for _, term := range ranked {
		count := counter.counts[term]
		_, high := l.highSet[term]
		topics = append(topics, TrendingTopic{
			Term:           capitalizeFirst(term),
			Count:          count,
			Weight:         math.Max(minWeight, float64(count)/maxCount),
			IsHighPriority: high,
		})
	}
	return topics
}

// ExtractTrendingTopics runs the built-in lexicon over titles.
func ExtractTrendingTopics(titles []string) []TrendingTopic {
	return defaultLexicon.ExtractTrendingTopics(titles)
}

// tokenize keeps ASCII word characters and hyphens, splits on whitespace and
// drops tokens shorter than three characters. Input must already be lowercase.
func tokenize(lower string) []string {
	cleaned := nonWordChars.ReplaceAllString(lower, " ")
	fields := strings.Fields(cleaned)
	words := fields[:0]
	for _, f := range fields {
		if len(f) >= minWordLength {
			words = append(words, f)
		}
	}
	return words
}

// capitalizeFirst uppercases the first rune and leaves the rest untouched.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
