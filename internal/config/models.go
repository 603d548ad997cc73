package config

import (
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// SpamConfig holds the scoring weights and the trusted-domain bypass
// list.
type SpamConfig struct {
	DomainMismatchWeight  float64
	SuspiciousLinksWeight float64
	UrgencyWordsWeight    float64
	GrammarIssuesWeight   float64
	KnownPatternsWeight   float64
	TrustedDomains        []string
}

// LanguageConfig tunes the language detector.
type LanguageConfig struct {
	MinConfidence float64
}

// CollabConfig is the call policy applied to every LLM-backed
// collaborator.
type CollabConfig struct {
	Timeout time.Duration
}

// HTTPConfig configures the HTTP API server.
type HTTPConfig struct {
	ListenAddress string
}

// SMTPConfig configures the SMTP content-filter surface.
type SMTPConfig struct {
	Enabled        bool
	ListenAddress  string
	BlockSpam      bool
	RelayEnabled   bool
	RelayAddress   string
	RelayPort      int
	SpamHeader     string
	ScoreHeader    string
	PriorityHeader string
	LanguageHeader string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetSpam returns the spam scoring configuration
func (c *Config) GetSpam() SpamConfig {
	return SpamConfig{
		DomainMismatchWeight:  c.GetFloat64("spam.weights.domain_mismatch"),
		SuspiciousLinksWeight: c.GetFloat64("spam.weights.suspicious_links"),
		UrgencyWordsWeight:    c.GetFloat64("spam.weights.urgency_words"),
		GrammarIssuesWeight:   c.GetFloat64("spam.weights.grammar_issues"),
		KnownPatternsWeight:   c.GetFloat64("spam.weights.known_patterns"),
		TrustedDomains:        c.GetStringSlice("spam.trusted_domains"),
	}
}

// GetLanguage returns the language detection configuration
func (c *Config) GetLanguage() LanguageConfig {
	return LanguageConfig{
		MinConfidence: c.GetFloat64("language.min_confidence"),
	}
}

// GetCollab returns the collaborator call policy
func (c *Config) GetCollab() CollabConfig {
	timeout, err := c.GetDuration("collab.timeout")
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return CollabConfig{Timeout: timeout}
}

// GetHTTP returns the HTTP API configuration
func (c *Config) GetHTTP() HTTPConfig {
	return HTTPConfig{
		ListenAddress: c.GetString("server.http.listen_address"),
	}
}

// GetSMTP returns the SMTP content-filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:        c.GetBool("server.smtp.enabled"),
		ListenAddress:  c.GetString("server.smtp.listen_address"),
		BlockSpam:      c.GetBool("server.smtp.block_spam"),
		RelayEnabled:   c.GetBool("server.smtp.relay.enabled"),
		RelayAddress:   c.GetString("server.smtp.relay.address"),
		RelayPort:      c.GetInt("server.smtp.relay.port"),
		SpamHeader:     c.GetString("server.smtp.headers.spam"),
		ScoreHeader:    c.GetString("server.smtp.headers.score"),
		PriorityHeader: c.GetString("server.smtp.headers.priority"),
		LanguageHeader: c.GetString("server.smtp.headers.language"),
	}
}
