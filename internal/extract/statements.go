// Package extract turns conversation text into short feature and bug-fix
// statements, tags and code-change summaries. Every function here is pure:
// the same input always yields the same output, and nothing returns an error
// once an Extractor has been compiled.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/config"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// Category selects the keyword set used by Statements.
type Category int

const (
	Feature Category = iota
	Fix
)

func (c Category) String() string {
	switch c {
	case Feature:
		return "feature"
	case Fix:
		return "fix"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	bulletPrefix  = regexp.MustCompile(`^\s*[-•*]\s*`)
	numberPrefix  = regexp.MustCompile(`^\d+\.\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

type noiseRule struct {
	re       *regexp.Regexp
	countAll bool
}

// Extractor holds compiled extraction rules.
type Extractor struct {
	noise          []noiseRule
	noiseThreshold int
	minSentence    int
	maxSentence    int
	minTagToken    int
	keywords       map[Category][]string
}

// New compiles the extraction settings. Keywords are matched
// case-insensitively, so they are stored lower-cased.
func New(cfg config.Extraction) (*Extractor, error) {
	e := &Extractor{
		noiseThreshold: cfg.NoiseThreshold,
		minSentence:    cfg.MinSentenceLength,
		maxSentence:    cfg.MaxSentenceLength,
		minTagToken:    cfg.MinTagTokenLength,
		keywords: map[Category][]string{
			Feature: lowerAll(cfg.FeatureKeywords),
			Fix:     lowerAll(cfg.FixKeywords),
		},
	}
	for _, p := range cfg.NoisePatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile noise pattern %q: %w", p.Pattern, err)
		}
		e.noise = append(e.noise, noiseRule{re: re, countAll: p.CountAll})
	}
	return e, nil
}

// NoiseCount totals the noise-pattern matches in text.
func (e *Extractor) NoiseCount(text string) int {
	total := 0
	for _, rule := range e.noise {
		if rule.countAll {
			total += len(rule.re.FindAllStringIndex(text, -1))
		} else if rule.re.MatchString(text) {
			total++
		}
	}
	return total
}

func (e *Extractor) isNoise(text string) bool {
	for _, rule := range e.noise {
		if rule.re.MatchString(text) {
			return true
		}
	}
	return false
}

func (e *Extractor) hasKeyword(cat Category, text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range e.keywords[cat] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Statements collects up to limit distinct sentences of the given category
// from messages, in message order and then sentence order.
func (e *Extractor) Statements(cat Category, messages []models.Message, limit int) []string {
	out := []string{}
	seen := make(map[string]bool)

	for _, msg := range messages {
		content := msg.Content
		if e.NoiseCount(content) > e.noiseThreshold {
			continue
		}
		if !e.hasKeyword(cat, content) {
			continue
		}

		for _, segment := range sentenceSplit.Split(content, -1) {
			sentence := strings.TrimSpace(segment)
			n := utf8.RuneCountInString(sentence)
			if n <= e.minSentence {
				continue
			}
			if !e.hasKeyword(cat, sentence) || e.isNoise(sentence) || n >= e.maxSentence {
				continue
			}

			clean := cleanSentence(sentence)
			if clean == "" || seen[clean] {
				continue
			}
			seen[clean] = true
			out = append(out, clean)
		}
	}

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Features is Statements for the feature category.
func (e *Extractor) Features(messages []models.Message, limit int) []string {
	return e.Statements(Feature, messages, limit)
}

// BugFixes is Statements for the fix category.
func (e *Extractor) BugFixes(messages []models.Message, limit int) []string {
	return e.Statements(Fix, messages, limit)
}

func cleanSentence(s string) string {
	s = bulletPrefix.ReplaceAllString(s, "")
	s = numberPrefix.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
