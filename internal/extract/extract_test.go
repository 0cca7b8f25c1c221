package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/config"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(config.DefaultConfig().Extraction)
	require.NoError(t, err)
	return e
}

func msgs(contents ...string) []models.Message {
	out := make([]models.Message, len(contents))
	for i, c := range contents {
		out[i] = models.Message{Content: c}
	}
	return out
}

func TestNewRejectsBadPattern(t *testing.T) {
	cfg := config.DefaultConfig().Extraction
	cfg.NoisePatterns = append(cfg.NoisePatterns, config.NoisePattern{Pattern: "("})
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNoiseCount(t *testing.T) {
	e := newExtractor(t)

	assert.Equal(t, 4, e.NoiseCount("<a><b><c><d>added feature"))
	assert.Equal(t, 2, e.NoiseCount(`{"a": 1} and {"b": 2}`))
	assert.Equal(t, 1, e.NoiseCount("function_calls function_calls"))
	assert.Equal(t, 2, e.NoiseCount("antml:function_calls"))
	assert.Equal(t, 2, e.NoiseCount("<function_calls>"))
	assert.Equal(t, 2, e.NoiseCount("antml:invoke name"))
	assert.Equal(t, 0, e.NoiseCount("We added a login feature."))
}

func TestStatementsNoisyMessageSkipped(t *testing.T) {
	e := newExtractor(t)

	got := e.Features(msgs("<a><b><c><d>added feature"), 5)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStatementsSentenceLevelNoise(t *testing.T) {
	e := newExtractor(t)

	got := e.Features(msgs("See <b>added</b> markup here. We added a login feature."), 5)
	assert.Equal(t, []string{"We added a login feature"}, got)
}

func TestStatementsCapPreservesOrder(t *testing.T) {
	e := newExtractor(t)

	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "Added login page handler %d. ", i)
	}
	got := e.Features(msgs(b.String()), 5)

	require.Len(t, got, 5)
	for i, s := range got {
		assert.Equal(t, fmt.Sprintf("Added login page handler %d", i+1), s)
	}
}

func TestStatementsOrderAcrossMessages(t *testing.T) {
	e := newExtractor(t)

	got := e.Features(msgs(
		"Implemented the export module. Refactored the parser.",
		"Built a caching component for sessions!",
	), 10)
	assert.Equal(t, []string{
		"Implemented the export module",
		"Refactored the parser",
		"Built a caching component for sessions",
	}, got)
}

func TestStatementsDeduplicate(t *testing.T) {
	e := newExtractor(t)

	got := e.BugFixes(msgs(
		"Fixed the null pointer error in the parser.",
		"Fixed the null pointer error in the parser. Nothing else changed.",
	), 5)
	assert.Equal(t, []string{"Fixed the null pointer error in the parser"}, got)
}

func TestStatementsCleanup(t *testing.T) {
	e := newExtractor(t)

	got := e.Features(msgs("-   implemented   the\n  export module!"), 5)
	assert.Equal(t, []string{"implemented the export module"}, got)
}

func TestStatementsLengthBounds(t *testing.T) {
	e := newExtractor(t)

	long := "We added " + strings.Repeat("very ", 30) + "long feature"
	got := e.Features(msgs("added it. "+long+"."), 5)
	assert.Empty(t, got, "short and overlong sentences are dropped")
}

func TestStatementsBoundaries(t *testing.T) {
	e := newExtractor(t)

	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "three noise matches still considered",
			content: "<a><b><c> markup. We added a login feature.",
			want:    []string{"We added a login feature"},
		},
		{
			name:    "four noise matches skipped",
			content: "<a><b><c><d> markup. We added a login feature.",
			want:    []string{},
		},
		{
			name:    "ten runes dropped",
			content: "Added it x.",
			want:    []string{},
		},
		{
			name:    "eleven runes kept",
			content: "Added it xy.",
			want:    []string{"Added it xy"},
		},
		{
			name:    "150 runes dropped",
			content: "Added " + strings.Repeat("a", 144) + ".",
			want:    []string{},
		},
		{
			name:    "149 runes kept",
			content: "Added " + strings.Repeat("a", 143) + ".",
			want:    []string{"Added " + strings.Repeat("a", 143)},
		},
		{
			name:    "length counted in runes",
			content: "Added " + strings.Repeat("界", 143) + ".",
			want:    []string{"Added " + strings.Repeat("界", 143)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Features(msgs(tc.content), 5))
		})
	}
}

func TestStatementsRequireCategoryKeyword(t *testing.T) {
	e := newExtractor(t)

	m := msgs("Added a retry helper to the client. Fixed a crash on startup.")
	assert.Equal(t, []string{"Added a retry helper to the client"}, e.Features(m, 5))
	assert.Equal(t, []string{"Fixed a crash on startup"}, e.BugFixes(m, 5))
}

func TestStatementsDeterministic(t *testing.T) {
	e := newExtractor(t)

	m := msgs("Implemented the export module. Fixed the login bug.", "Improved caching system performance.")
	assert.Equal(t, e.Features(m, 5), e.Features(m, 5))
}

func TestTags(t *testing.T) {
	cfg := config.DefaultConfig().Extraction
	cfg.MinTagTokenLength = 2
	e, err := New(cfg)
	require.NoError(t, err)

	raw := models.RawRecord{Tag: "bug fix", Description: "fix fix error error detail"}
	assert.Equal(t, []string{"bug-fix", "fix", "error"}, e.Tags(raw, 3))
}

func TestTagsDefaults(t *testing.T) {
	e := newExtractor(t)

	raw := models.RawRecord{
		Tag:         "function added",
		Summary:     "Added Export to the CSV report",
		Description: "",
		Messages: []models.Message{
			{Type: "code"}, {Type: ""}, {Type: "review"}, {Type: "code"},
		},
	}
	assert.Equal(t, []string{"function-added", "added", "export", "report", "code", "review"}, e.Tags(raw, 6))
}

func TestTagsOtherAndEmpty(t *testing.T) {
	e := newExtractor(t)

	assert.Equal(t, []string{}, e.Tags(models.RawRecord{Tag: "other"}, 6))
	assert.Equal(t, []string{}, e.Tags(models.RawRecord{}, 6))
	assert.Equal(t, []string{}, e.Tags(models.RawRecord{Tag: "question"}, 0))
}

func TestFormatCodeChanges(t *testing.T) {
	assert.Equal(t, NoCodeChanges, FormatCodeChanges("", ""))
	assert.Equal(t, "// Before:\nx\n\n", FormatCodeChanges("x", ""))
	assert.Equal(t, "// After:\ny", FormatCodeChanges("", "y"))
	assert.Equal(t, "// Before:\nx\n\n// After:\ny", FormatCodeChanges("x", "y"))
}

func TestAggregateCodeChanges(t *testing.T) {
	changes, ok := AggregateCodeChanges([]models.Message{{CodeChanges: "A"}, {Content: "no code"}, {CodeChanges: "B"}})
	assert.True(t, ok)
	assert.Equal(t, "A\n\nB", changes)

	_, ok = AggregateCodeChanges(msgs("nothing"))
	assert.False(t, ok)
}

func TestResolveCode(t *testing.T) {
	raw := models.RawRecord{Messages: []models.Message{
		{AfterCode: "after-1"},
		{BeforeCode: "before-2", AfterCode: "after-2"},
	}}
	before, after := ResolveCode(raw)
	assert.Equal(t, "before-2", before)
	assert.Equal(t, "after-1", after)

	raw.BeforeCode = "top"
	before, _ = ResolveCode(raw)
	assert.Equal(t, "top", before)
}

func TestCodeChangesPrecedence(t *testing.T) {
	raw := models.RawRecord{
		Messages: []models.Message{{CodeChanges: "A"}, {CodeChanges: "B"}},
	}
	assert.Equal(t, "A\n\nB", CodeChanges(raw, "x", "y"))

	raw.Messages = []models.Message{{Content: "no code here"}}
	assert.Equal(t, "// Before:\nx\n\n// After:\ny", CodeChanges(raw, "x", "y"))

	raw.Messages = nil
	assert.Equal(t, NoCodeChanges, CodeChanges(raw, "", ""))
}
