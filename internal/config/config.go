package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "TOC_DIGEST_CONFIG"
	backendEnv       = "TOC_DIGEST_BACKEND"
	outputPathEnv    = "TOC_DIGEST_OUTPUT"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	cursorAPIKeyEnv  = "CURSOR_API_KEY"
	lookbackDaysEnv  = "LOOKBACK_DAYS"
	maxPerFeedEnv    = "MAX_ITEMS_PER_FEED"
	maxTotalItemsEnv = "MAX_TOTAL_ITEMS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Inputs  InputConfig   `yaml:"inputs"`
	Limits  LimitConfig   `yaml:"limits"`
	Triage  TriageConfig  `yaml:"triage"`
	Digest  DigestConfig  `yaml:"digest"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// InputConfig names the two input documents driving a run.
type InputConfig struct {
	FeedsPath     string `yaml:"feedsPath"`
	InterestsPath string `yaml:"interestsPath"`
}

// LimitConfig bounds ingestion and text sizes.
type LimitConfig struct {
	MaxPerFeed        int `yaml:"maxPerFeed"`
	MaxTotal          int `yaml:"maxTotal"`
	LookbackDays      int `yaml:"lookbackDays"`
	SummaryMaxChars   int `yaml:"summaryMaxChars"`
	NarrativeMaxChars int `yaml:"narrativeMaxChars"`
	PrefilterKeep     int `yaml:"prefilterKeep"`
}

// TriageConfig tunes the batch scoring stage.
type TriageConfig struct {
	BatchSize             int `yaml:"batchSize"`
	PromptSummaryMaxChars int `yaml:"promptSummaryMaxChars"`
}

// DigestConfig controls thresholding and rendering of the final report.
type DigestConfig struct {
	MinScore    float64 `yaml:"minScore"`
	MaxReturned int     `yaml:"maxReturned"`
	OutputPath  string  `yaml:"outputPath"`
}

// ScoringConfig selects and parameterizes the scoring backend.
type ScoringConfig struct {
	Backend string       `yaml:"backend"`
	OpenAI  OpenAIConfig `yaml:"openai"`
	Agent   AgentConfig  `yaml:"agent"`
}

// OpenAIConfig defines how to contact the OpenAI Responses API.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// AgentConfig defines the agent-CLI scoring backend (no schema API, prompt-only).
type AgentConfig struct {
	Command string `yaml:"command"`
	APIKey  string `yaml:"apiKey"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(backendEnv); v != "" {
		c.Scoring.Backend = v
	}

	if v := os.Getenv(outputPathEnv); v != "" {
		c.Digest.OutputPath = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Scoring.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.Scoring.OpenAI.Model = v
	}

	if v := os.Getenv(cursorAPIKeyEnv); v != "" {
		c.Scoring.Agent.APIKey = v
	}

	c.Limits.LookbackDays = intFromEnv(lookbackDaysEnv, c.Limits.LookbackDays)
	c.Limits.MaxPerFeed = intFromEnv(maxPerFeedEnv, c.Limits.MaxPerFeed)
	c.Limits.MaxTotal = intFromEnv(maxTotalItemsEnv, c.Limits.MaxTotal)
}

func intFromEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: ignoring non-numeric %s=%q", key, v)
		return fallback
	}
	return parsed
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Inputs.FeedsPath != "" {
		base.Inputs.FeedsPath = override.Inputs.FeedsPath
	}
	if override.Inputs.InterestsPath != "" {
		base.Inputs.InterestsPath = override.Inputs.InterestsPath
	}

	if override.Limits.MaxPerFeed > 0 {
		base.Limits.MaxPerFeed = override.Limits.MaxPerFeed
	}
	if override.Limits.MaxTotal > 0 {
		base.Limits.MaxTotal = override.Limits.MaxTotal
	}
	if override.Limits.LookbackDays > 0 {
		base.Limits.LookbackDays = override.Limits.LookbackDays
	}
	if override.Limits.SummaryMaxChars > 0 {
		base.Limits.SummaryMaxChars = override.Limits.SummaryMaxChars
	}
	if override.Limits.NarrativeMaxChars > 0 {
		base.Limits.NarrativeMaxChars = override.Limits.NarrativeMaxChars
	}
	if override.Limits.PrefilterKeep > 0 {
		base.Limits.PrefilterKeep = override.Limits.PrefilterKeep
	}

	if override.Triage.BatchSize > 0 {
		base.Triage.BatchSize = override.Triage.BatchSize
	}
	if override.Triage.PromptSummaryMaxChars > 0 {
		base.Triage.PromptSummaryMaxChars = override.Triage.PromptSummaryMaxChars
	}

	if override.Digest.MinScore > 0 {
		base.Digest.MinScore = override.Digest.MinScore
	}
	if override.Digest.MaxReturned > 0 {
		base.Digest.MaxReturned = override.Digest.MaxReturned
	}
	if override.Digest.OutputPath != "" {
		base.Digest.OutputPath = override.Digest.OutputPath
	}

	if override.Scoring.Backend != "" {
		base.Scoring.Backend = override.Scoring.Backend
	}
	if override.Scoring.OpenAI.Endpoint != "" {
		base.Scoring.OpenAI.Endpoint = override.Scoring.OpenAI.Endpoint
	}
	if override.Scoring.OpenAI.Model != "" {
		base.Scoring.OpenAI.Model = override.Scoring.OpenAI.Model
	}
	if override.Scoring.OpenAI.APIKey != "" {
		base.Scoring.OpenAI.APIKey = override.Scoring.OpenAI.APIKey
	}
	if override.Scoring.Agent.Command != "" {
		base.Scoring.Agent.Command = override.Scoring.Agent.Command
	}
	if override.Scoring.Agent.APIKey != "" {
		base.Scoring.Agent.APIKey = override.Scoring.Agent.APIKey
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Inputs: InputConfig{
			FeedsPath:     "feeds.txt",
			InterestsPath: "interests.md",
		},
		Limits: LimitConfig{
			MaxPerFeed:        50,
			MaxTotal:          500,
			LookbackDays:      7,
			SummaryMaxChars:   2000,
			NarrativeMaxChars: 12000,
			PrefilterKeep:     150,
		},
		Triage: TriageConfig{
			BatchSize:             50,
			PromptSummaryMaxChars: 500,
		},
		Digest: DigestConfig{
			MinScore:    0.65,
			MaxReturned: 10,
			OutputPath:  "digest.md",
		},
		Scoring: ScoringConfig{
			Backend: "openai",
			OpenAI: OpenAIConfig{
				Endpoint: "https://api.openai.com/v1/responses",
				Model:    "gpt-4o",
			},
			Agent: AgentConfig{Command: "agent"},
		},
	}
}
