package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	WordPress WordPress `mapstructure:"wordpress"`
	Scraper   Scraper   `mapstructure:"scraper"`
	Cache     Cache     `mapstructure:"cache"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// AI holds LLM provider configuration. A provider with an empty API key
// is not registered at startup.
type AI struct {
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenAICompatible `mapstructure:"openrouter"`
	Together   OpenAICompatible `mapstructure:"together"`
	Groq       OpenAICompatible `mapstructure:"groq"`
}

// GeminiConfig holds Google Gemini configuration.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
}

// OpenAICompatible holds configuration for an OpenAI-compatible
// chat-completions backend (OpenRouter, Together, Groq).
type OpenAICompatible struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// WordPress holds the target site credentials. Password is an
// application password, not the account password.
type WordPress struct {
	SiteURL  string `mapstructure:"site_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"app_password"`
	Timeout  string `mapstructure:"timeout"`
}

// Scraper holds scraping configuration.
type Scraper struct {
	Timeout   string `mapstructure:"timeout"`
	UserAgent string `mapstructure:"user_agent"`
}

// Cache holds cache configuration.
type Cache struct {
	Directory string    `mapstructure:"directory"`
	TTL       TTLConfig `mapstructure:"ttl"`
}

// TTLConfig holds TTLs for the different cached content types.
type TTLConfig struct {
	Pages         string `mapstructure:"pages"`
	EventSearches string `mapstructure:"event_searches"`
}

// Load builds a Config from the current viper state, applying defaults.
func Load() (*Config, error) {
	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".editoria")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("ai.openrouter.model", "meta-llama/llama-3.3-70b-instruct")
	viper.SetDefault("ai.together.base_url", "https://api.together.xyz/v1")
	viper.SetDefault("ai.together.model", "meta-llama/Llama-3.3-70B-Instruct-Turbo")
	viper.SetDefault("ai.groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("ai.groq.model", "llama-3.3-70b-versatile")

	viper.SetDefault("wordpress.timeout", "30s")
	viper.SetDefault("scraper.timeout", "20s")
	viper.SetDefault("scraper.user_agent", "editoria/1.0")

	viper.SetDefault("cache.directory", ".editoria-cache")
	viper.SetDefault("cache.ttl.pages", "24h")
	viper.SetDefault("cache.ttl.event_searches", "4h")
}

// ParseDuration parses a duration config value, falling back to def when
// the value is empty or malformed.
func ParseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
