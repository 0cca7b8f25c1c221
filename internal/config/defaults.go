package config

import (
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		FetchTimeout: 30 * time.Second,
		DataDir:      "./data",
		Feed: Feed{
			Port:     "5002",
			CacheTTL: 60 * time.Second,
		},
		Display: Display{
			MaxFunctions: 5,
			MaxBugFixes:  5,
			MaxTags:      6,
		},
		Defaults: Defaults{
			ProjectName:  "Unknown Project",
			AIModel:      "OpenAI GPT-3.5",
			Impact:       "Had a positive impact on project development",
			Participants: []string{"User", "AI"},
		},
		Extraction: Extraction{
			NoiseThreshold:    3,
			MinSentenceLength: 10,
			MaxSentenceLength: 150,
			MinTagTokenLength: 3,
			FeatureKeywords: []string{
				"added", "implemented", "created", "built", "developed",
				"enhanced", "improved", "updated", "modified", "refactored",
				"feature", "functionality", "component", "module", "system",
			},
			FixKeywords: []string{
				"fixed", "resolved", "corrected", "repaired", "debugged",
				"solved", "addressed", "patched", "bug", "error", "issue",
			},
			NoisePatterns: []NoisePattern{
				{Pattern: `(?i)function_calls`},
				{Pattern: `(?i)antml:function_calls`},
				{Pattern: `(?i)antml:invoke`},
				{Pattern: `(?i)parameter name`},
				{Pattern: `(?i)parameter>`},
				{Pattern: `(?i)invoke name`},
				{Pattern: `(?i)result>`},
				{Pattern: `(?i)output>`},
				{Pattern: `<[^>]+>`, CountAll: true},
				{Pattern: `\{[^}]*\}`, CountAll: true},
				{Pattern: `^\s*[-•]\s*$`},
				{Pattern: `^\s*\d+\|\s*`},
			},
		},
		TypeMappings: map[string]string{
			"bug fixed":       models.TypeSecurity,
			"function added":  models.TypeFeature,
			"function modify": models.TypeFeature,
			"question":        models.TypeDiscussion,
			"discussion":      models.TypeDiscussion,
			"other":           models.TypeOther,
		},
		ImpactDescriptions: map[string]string{
			"bug fixed":       "Improved system stability and user experience",
			"function added":  "Enhanced functionality and user capabilities",
			"function modify": "Optimized existing features and performance",
			"question":        "Clarified requirements and improved understanding",
			"discussion":      "Promoted knowledge sharing and collaboration",
			"other":           "Had a positive impact on project development",
		},
	}
}
