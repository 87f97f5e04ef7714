// Package config loads mathlearn configuration from an optional YAML file
// and MATHLEARN_ environment variables. Environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database       DatabaseConfig  `yaml:"database"`
	Cache          CacheConfig     `yaml:"cache"`
	Log            LogConfig       `yaml:"log"`
	Evaluator      EvaluatorConfig `yaml:"evaluator"`
	Content        ContentConfig   `yaml:"content"`
	Session        SessionConfig   `yaml:"session"`
	LLM            LLMConfig       `yaml:"llm"`
	CurriculumPath string          `yaml:"curriculum_path"`
}

// DatabaseConfig selects and configures the snapshot backend.
type DatabaseConfig struct {
	Driver        string `yaml:"driver"` // "sqlite" or "postgres"
	Path          string `yaml:"path"`   // SQLite file; empty means the XDG default
	URL           string `yaml:"url"`    // Postgres URL
	MaxConns      int    `yaml:"max_conns"`
	MinConns      int    `yaml:"min_conns"`
	KeepSnapshots int    `yaml:"keep_snapshots"`
}

// CacheConfig holds the optional Redis connection used for the shared item
// sequence. An empty URL keeps the sequence in-process.
type CacheConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EvaluatorConfig configures the evaluator injected into sessions.
type EvaluatorConfig struct {
	Kind               string  `yaml:"kind"` // "random" or "fixture"
	Seed               int64   `yaml:"seed"` // 0 derives a seed from the clock
	PassProbability    float64 `yaml:"pass_probability"`
	OptimalProbability float64 `yaml:"optimal_probability"`
	FixturePath        string  `yaml:"fixture_path"`
}

// ContentConfig selects the content factory.
type ContentConfig struct {
	Factory string `yaml:"factory"` // "template" or "llm"
}

// SessionConfig holds scheduler host settings.
type SessionConfig struct {
	Concurrency  int  `yaml:"concurrency"`
	RecordEvents bool `yaml:"record_events"`
}

// LLMConfig holds provider selection and credentials for the LLM-backed
// content factory.
type LLMConfig struct {
	Provider        string `yaml:"provider"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:        "sqlite",
			MaxConns:      10,
			MinConns:      1,
			KeepSnapshots: 5,
		},
		Cache: CacheConfig{
			Key: "mathlearn:item_seq",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Evaluator: EvaluatorConfig{
			Kind:               "random",
			PassProbability:    0.7,
			OptimalProbability: 0.6,
		},
		Content: ContentConfig{
			Factory: "template",
		},
		Session: SessionConfig{
			Concurrency:  4,
			RecordEvents: true,
		},
		LLM: LLMConfig{
			Provider:       "anthropic",
			AnthropicModel: "claude-haiku",
			OpenAIModel:    "gpt-4o-mini",
			GeminiModel:    "gemini-flash",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then MATHLEARN_ environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MATHLEARN_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.Driver = envStr("MATHLEARN_DB_DRIVER", c.Database.Driver)
	c.Database.Path = envStr("MATHLEARN_DB", c.Database.Path)
	c.Database.URL = envStr("MATHLEARN_DATABASE_URL", c.Database.URL)
	c.Database.MaxConns = envInt("MATHLEARN_DATABASE_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = envInt("MATHLEARN_DATABASE_MIN_CONNS", c.Database.MinConns)
	c.Database.KeepSnapshots = envInt("MATHLEARN_KEEP_SNAPSHOTS", c.Database.KeepSnapshots)

	c.Cache.URL = envStr("MATHLEARN_CACHE_URL", c.Cache.URL)
	c.Cache.Key = envStr("MATHLEARN_CACHE_KEY", c.Cache.Key)

	c.Log.Level = envStr("MATHLEARN_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envStr("MATHLEARN_LOG_FORMAT", c.Log.Format)

	c.Evaluator.Kind = envStr("MATHLEARN_EVALUATOR", c.Evaluator.Kind)
	c.Evaluator.Seed = envInt64("MATHLEARN_EVALUATOR_SEED", c.Evaluator.Seed)
	c.Evaluator.PassProbability = envFloat("MATHLEARN_EVALUATOR_PASS_PROBABILITY", c.Evaluator.PassProbability)
	c.Evaluator.OptimalProbability = envFloat("MATHLEARN_EVALUATOR_OPTIMAL_PROBABILITY", c.Evaluator.OptimalProbability)
	c.Evaluator.FixturePath = envStr("MATHLEARN_EVALUATOR_FIXTURE", c.Evaluator.FixturePath)

	c.Content.Factory = envStr("MATHLEARN_CONTENT_FACTORY", c.Content.Factory)
	c.Session.Concurrency = envInt("MATHLEARN_SESSION_CONCURRENCY", c.Session.Concurrency)
	c.Session.RecordEvents = envBool("MATHLEARN_RECORD_EVENTS", c.Session.RecordEvents)
	c.CurriculumPath = envStr("MATHLEARN_CURRICULUM", c.CurriculumPath)

	c.LLM.Provider = envStr("MATHLEARN_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.AnthropicAPIKey = envStr("MATHLEARN_ANTHROPIC_API_KEY", c.LLM.AnthropicAPIKey)
	c.LLM.AnthropicModel = envStr("MATHLEARN_ANTHROPIC_MODEL", c.LLM.AnthropicModel)
	c.LLM.OpenAIAPIKey = envStr("MATHLEARN_OPENAI_API_KEY", c.LLM.OpenAIAPIKey)
	c.LLM.OpenAIModel = envStr("MATHLEARN_OPENAI_MODEL", c.LLM.OpenAIModel)
	c.LLM.OpenAIBaseURL = envStr("MATHLEARN_OPENAI_BASE_URL", c.LLM.OpenAIBaseURL)
	c.LLM.GeminiAPIKey = envStr("MATHLEARN_GEMINI_API_KEY", c.LLM.GeminiAPIKey)
	c.LLM.GeminiModel = envStr("MATHLEARN_GEMINI_MODEL", c.LLM.GeminiModel)
}

// Validate rejects unknown enum values and out-of-range numbers.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("MATHLEARN_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("MATHLEARN_DB_DRIVER must be 'sqlite' or 'postgres', got %q", c.Database.Driver)
	}

	if c.Database.KeepSnapshots < 1 {
		return fmt.Errorf("MATHLEARN_KEEP_SNAPSHOTS must be at least 1, got %d", c.Database.KeepSnapshots)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("MATHLEARN_LOG_FORMAT must be 'text' or 'json', got %q", c.Log.Format)
	}

	switch c.Evaluator.Kind {
	case "random":
	case "fixture":
		if c.Evaluator.FixturePath == "" {
			return fmt.Errorf("MATHLEARN_EVALUATOR_FIXTURE is required for the fixture evaluator")
		}
	default:
		return fmt.Errorf("MATHLEARN_EVALUATOR must be 'random' or 'fixture', got %q", c.Evaluator.Kind)
	}

	if p := c.Evaluator.PassProbability; p < 0 || p > 1 {
		return fmt.Errorf("evaluator pass probability must be in [0,1], got %v", p)
	}
	if p := c.Evaluator.OptimalProbability; p < 0 || p > 1 {
		return fmt.Errorf("evaluator optimal probability must be in [0,1], got %v", p)
	}

	switch c.Content.Factory {
	case "template", "llm":
	default:
		return fmt.Errorf("MATHLEARN_CONTENT_FACTORY must be 'template' or 'llm', got %q", c.Content.Factory)
	}

	if c.Session.Concurrency < 1 {
		return fmt.Errorf("MATHLEARN_SESSION_CONCURRENCY must be at least 1, got %d", c.Session.Concurrency)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
