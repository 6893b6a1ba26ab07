// Package keywords scores headlines for AI relevance and extracts trending
// topics from a batch of titles.
package keywords

import (
	"fmt"
	"os"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"gopkg.in/yaml.v3"
)

// Built-in lexicon. Prioritized for Claude, agents and productivity.
var defaultDomainTerms = []string{
	// Claude & Anthropic
	"claude", "anthropic", "claude code", "sonnet", "opus", "haiku",

	// Agents & automation
	"agent", "agents", "agentic", "autonomous", "automation", "workflow",
	"mcp", "tool use", "function calling", "orchestration",

	// Productivity & coding
	"copilot", "cursor", "windsurf", "codeium", "tabnine", "replit",
	"productivity", "coding assistant", "code generation", "ide",

	// Core AI/LLM terms
	"ai", "llm", "gpt", "chatgpt", "openai", "gemini", "llama", "mistral",
	"transformer", "neural", "machine learning", "deep learning",

	// Other major players
	"google", "meta", "microsoft", "nvidia", "deepmind", "hugging face",

	// Technical terms
	"nlp", "multimodal", "rag", "embedding", "vector", "fine-tune",
	"context window", "reasoning", "benchmark", "inference", "training",

	// Emerging
	"agi", "alignment", "safety", "open source", "local llm",
}

var defaultHighPriorityTerms = []string{
	"claude", "anthropic", "agent", "agentic", "productivity",
	"claude code", "mcp", "automation", "workflow", "coding assistant",
}

var defaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "shall", "can", "need",
	"this", "that", "these", "those", "i", "you", "he", "she", "it", "we",
	"they", "what", "which", "who", "when", "where", "why", "how", "all",
	"each", "every", "both", "few", "more", "most", "other", "some", "such",
	"no", "nor", "not", "only", "own", "same", "so", "than", "too", "very",
	"just", "also", "now", "new", "first", "last", "long", "great", "little",
	"old", "right", "big", "high", "different", "small",
	"large", "next", "early", "young", "important", "public", "bad",
	"able", "into", "after", "before", "between", "under", "over", "again",
	"further", "then", "once", "here", "there", "any", "about",
	"up", "out", "if", "because", "as", "until", "while", "during", "through",
	"your", "its", "his", "her", "their", "our", "my", "get", "got", "gets",
	"using", "use", "used", "like", "make", "makes", "made", "via", "says",
	"said", "show", "shows", "announced", "releases", "released", "launches",
}

// Lexicon holds the term sets used for classification and trend extraction.
// It is immutable after construction and safe for concurrent use.
type Lexicon struct {
	domainTerms   []string
	highPriority  []string
	domainSet     map[string]struct{}
	highSet       map[string]struct{}
	stopWords     map[string]struct{}
	domainMatcher *ahocorasick.Matcher
	highMatcher   *ahocorasick.Matcher
}

// LexiconConfig is the YAML shape of a lexicon file:
//
//	domainTerms: [claude, agent, ...]
//	highPriorityTerms: [claude, ...]
//	stopWords: [the, a, ...]
type LexiconConfig struct {
	DomainTerms       []string `yaml:"domainTerms"`
	HighPriorityTerms []string `yaml:"highPriorityTerms"`
	StopWords         []string `yaml:"stopWords"`
}

// NewLexicon builds a lexicon. Terms are trimmed and lowercased, empty
// entries dropped and duplicates removed, keeping first-seen order.
func NewLexicon(domainTerms, highPriorityTerms, stopWords []string) *Lexicon {
	l := &Lexicon{
		domainTerms:  normalizeTerms(domainTerms),
		highPriority: normalizeTerms(highPriorityTerms),
	}
	l.domainSet = toSet(l.domainTerms)
	l.highSet = toSet(l.highPriority)
	l.stopWords = toSet(normalizeTerms(stopWords))
	l.domainMatcher = ahocorasick.NewStringMatcher(l.domainTerms)
	l.highMatcher = ahocorasick.NewStringMatcher(l.highPriority)
	return l
}

var defaultLexicon = NewLexicon(defaultDomainTerms, defaultHighPriorityTerms, defaultStopWords)

// Default returns the built-in lexicon.
func Default() *Lexicon {
	return defaultLexicon
}

// LoadLexicon reads a lexicon from a YAML file. Sections left empty in the
// file fall back to the built-in lists.
func LoadLexicon(path string) (*Lexicon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	var cfg LexiconConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	if len(cfg.DomainTerms) == 0 {
		cfg.DomainTerms = defaultDomainTerms
	}
	if len(cfg.HighPriorityTerms) == 0 {
		cfg.HighPriorityTerms = defaultHighPriorityTerms
	}
	if len(cfg.StopWords) == 0 {
		cfg.StopWords = defaultStopWords
	}

	return NewLexicon(cfg.DomainTerms, cfg.HighPriorityTerms, cfg.StopWords), nil
}

// DomainTerms returns a copy of the domain terms in declaration order.
func (l *Lexicon) DomainTerms() []string {
	return append([]string(nil), l.domainTerms...)
}

// HighPriorityTerms returns a copy of the high-priority terms in declaration order.
func (l *Lexicon) HighPriorityTerms() []string {
	return append([]string(nil), l.highPriority...)
}

// IsHighPriority reports whether term is a high-priority term.
func (l *Lexicon) IsHighPriority(term string) bool {
	_, ok := l.highSet[strings.ToLower(term)]
	return ok
}

// IsDomainTerm reports whether term is a domain term.
func (l *Lexicon) IsDomainTerm(term string) bool {
	_, ok := l.domainSet[strings.ToLower(term)]
	return ok
}

// IsStopWord reports whether word is a stop word.
func (l *Lexicon) IsStopWord(word string) bool {
	_, ok := l.stopWords[strings.ToLower(word)]
	return ok
}

// substringHits returns, indexed like terms, which terms occur in text.
// MatchThreadSafe is required: Match mutates the matcher.
func substringHits(m *ahocorasick.Matcher, terms []string, text string) []bool {
	hits := make([]bool, len(terms))
	if len(terms) == 0 || text == "" {
		return hits
	}
	for _, idx := range m.MatchThreadSafe([]byte(text)) {
		if idx >= 0 && idx < len(hits) {
			hits[idx] = true
		}
	}
	return hits
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}
