package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-triage/")
	v.AddConfigPath("$HOME/.mail-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults; "none" runs the local collaborators only
	v.SetDefault("llm.provider", "none")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.3)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Collaborator call policy: one deadline, no retries
	v.SetDefault("collab.timeout", "30s")

	// Spam scoring defaults
	v.SetDefault("spam.weights.domain_mismatch", 0.30)
	v.SetDefault("spam.weights.suspicious_links", 0.25)
	v.SetDefault("spam.weights.urgency_words", 0.20)
	v.SetDefault("spam.weights.grammar_issues", 0.10)
	v.SetDefault("spam.weights.known_patterns", 0.35)
	v.SetDefault("spam.trusted_domains", []string{})

	// Language detection defaults
	v.SetDefault("language.min_confidence", 0.65)

	// HTTP API defaults
	v.SetDefault("server.http.listen_address", "0.0.0.0:8080")

	// SMTP content-filter defaults
	v.SetDefault("server.smtp.enabled", false)
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.smtp.block_spam", false)
	v.SetDefault("server.smtp.relay.enabled", true)
	v.SetDefault("server.smtp.relay.address", "127.0.0.1")
	v.SetDefault("server.smtp.relay.port", 10026)
	v.SetDefault("server.smtp.headers.spam", "X-Spam-Status")
	v.SetDefault("server.smtp.headers.score", "X-Spam-Score")
	v.SetDefault("server.smtp.headers.priority", "X-Triage-Priority")
	v.SetDefault("server.smtp.headers.language", "X-Triage-Language")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
