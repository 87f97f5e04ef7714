package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/mathlearn/internal/config"
)

// Provider names accepted by NewProvider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config holds provider selection, credentials and middleware settings.
type Config struct {
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig holds OpenAI configuration. BaseURL points the client at
// any OpenAI-compatible gateway such as OpenRouter.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetry is three attempts with exponential backoff from one second.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// FromConfig builds an LLM Config from the application config. A provider
// whose key is not set in c falls back to the vendor's conventional
// environment variable (ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY).
func FromConfig(c config.LLMConfig) Config {
	return Config{
		Provider: c.Provider,
		Anthropic: AnthropicConfig{
			APIKey: firstNonEmpty(c.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY")),
			Model:  c.AnthropicModel,
		},
		OpenAI: OpenAIConfig{
			APIKey:  firstNonEmpty(c.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY")),
			Model:   c.OpenAIModel,
			BaseURL: c.OpenAIBaseURL,
		},
		Gemini: GeminiConfig{
			APIKey: firstNonEmpty(c.GeminiAPIKey, os.Getenv("GEMINI_API_KEY")),
			Model:  c.GeminiModel,
		},
		Retry:   DefaultRetry(),
		Timeout: 60 * time.Second,
	}
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "MATHLEARN_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "MATHLEARN_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "MATHLEARN_GEMINI_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
