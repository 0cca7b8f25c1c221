package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// Config holds every tunable of the feed pipeline. Binaries start from
// DefaultConfig, overlay an optional YAML file, then apply environment
// overrides.
type Config struct {
	// Endpoint is the URL of the projects document consumed by the loader.
	// When empty the MCP server builds the document from the local archive.
	Endpoint string `yaml:"endpoint"`

	// FetchTimeout bounds a single request to Endpoint.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// DataDir holds the SQLite chat-log archive.
	DataDir string `yaml:"data_dir"`

	// LogsDir is an optional directory of JSON chat logs merged into the feed.
	LogsDir string `yaml:"logs_dir"`

	Feed       Feed       `yaml:"feed"`
	Display    Display    `yaml:"display"`
	Defaults   Defaults   `yaml:"defaults"`
	Extraction Extraction `yaml:"extraction"`

	// TypeMappings maps a raw categorical tag to a project type.
	TypeMappings map[string]string `yaml:"type_mappings"`

	// ImpactDescriptions maps a raw categorical tag to an impact sentence.
	ImpactDescriptions map[string]string `yaml:"impact_descriptions"`
}

// Feed configures the HTTP feed server.
type Feed struct {
	Port     string        `yaml:"port"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Display holds the caps applied to extracted lists.
type Display struct {
	MaxFunctions int `yaml:"max_functions"`
	MaxBugFixes  int `yaml:"max_bug_fixes"`
	MaxTags      int `yaml:"max_tags"`
}

// Defaults are the values used when a record carries nothing better.
type Defaults struct {
	ProjectName  string   `yaml:"project_name"`
	AIModel      string   `yaml:"ai_model"`
	Impact       string   `yaml:"impact"`
	Participants []string `yaml:"participants"`
}

// Extraction holds the heuristic thresholds and word lists used by the
// statement and tag extractors.
type Extraction struct {
	// NoiseThreshold is the largest noise-match total a message may carry
	// and still be considered.
	NoiseThreshold int `yaml:"noise_threshold"`

	// MinSentenceLength drops segments of this length or shorter.
	MinSentenceLength int `yaml:"min_sentence_length"`

	// MaxSentenceLength drops sentences of this length or longer.
	MaxSentenceLength int `yaml:"max_sentence_length"`

	// MinTagTokenLength drops description tokens of this length or shorter.
	MinTagTokenLength int `yaml:"min_tag_token_length"`

	FeatureKeywords []string       `yaml:"feature_keywords"`
	FixKeywords     []string       `yaml:"fix_keywords"`
	NoisePatterns   []NoisePattern `yaml:"noise_patterns"`
}

// NoisePattern is a regular expression marking non-semantic text.
// With CountAll every occurrence adds to the noise total; otherwise a
// match adds one.
type NoisePattern struct {
	Pattern  string `yaml:"pattern"`
	CountAll bool   `yaml:"count_all"`
}

// Load returns DefaultConfig overlaid with the YAML file at path. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv reads an optional .env file into the process environment and then
// applies the DEVFEED_* and PORT overrides to cfg.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	if v := os.Getenv("DEVFEED_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("DEVFEED_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DEVFEED_LOGS_DIR"); v != "" {
		c.LogsDir = v
	}
	if v := os.Getenv("DEVFEED_DEFAULT_PROJECT"); v != "" {
		c.Defaults.ProjectName = v
	}
	if v := os.Getenv("DEVFEED_AI_MODEL"); v != "" {
		c.Defaults.AIModel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Feed.Port = v
	}
	if v := os.Getenv("DEVFEED_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DEVFEED_CACHE_TTL: %w", err)
		}
		c.Feed.CacheTTL = ttl
	}
	if v := os.Getenv("DEVFEED_MAX_TAGS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DEVFEED_MAX_TAGS: %w", err)
		}
		c.Display.MaxTags = n
	}
	return c.Validate()
}

// Validate checks that caps are non-negative and that every mapped type is a
// member of the project type enumeration.
func (c *Config) Validate() error {
	if c.Display.MaxFunctions < 0 || c.Display.MaxBugFixes < 0 || c.Display.MaxTags < 0 {
		return fmt.Errorf("display caps must not be negative")
	}
	if c.Extraction.MinSentenceLength < 0 || c.Extraction.MaxSentenceLength < 0 {
		return fmt.Errorf("sentence bounds must not be negative")
	}
	for tag, typ := range c.TypeMappings {
		if !models.IsProjectType(typ) {
			return fmt.Errorf("type mapping %q: unknown project type %q", tag, typ)
		}
	}
	return nil
}

// TypeFor maps a raw tag to its project type, falling back to "Other".
func (c *Config) TypeFor(tag string) string {
	if typ, ok := c.TypeMappings[tag]; ok {
		return typ
	}
	return models.TypeOther
}

// ImpactFor maps a raw tag to its impact sentence, falling back to the
// configured default.
func (c *Config) ImpactFor(tag string) string {
	if impact, ok := c.ImpactDescriptions[tag]; ok {
		return impact
	}
	return c.Defaults.Impact
}
