package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/config"
	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/factory"
	"github.com/mikey/mail-triage/internal/logging"
	"github.com/mikey/mail-triage/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Collaborator call policy
	CollabTimeout string

	// Spam scoring flags
	TrustedDomains string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "none", "LLM provider (none, bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.3, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Collaborator call policy
	flag.StringVar(&flags.CollabTimeout, "collab-timeout", "30s", "Per-call timeout for LLM collaborators")

	// Spam scoring flags
	flag.StringVar(&flags.TrustedDomains, "trusted-domains", "", "Comma-separated list of trusted sender domains")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file as JSON (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAnalyzerFactory); err != nil {
		return nil, err
	}

	// Register collaborators
	if err := container.Provide(func(f *factory.LLMFactory) (core.Summarizer, error) {
		return f.CreateSummarizer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.ReplyGenerator, error) {
		return f.CreateReplyGenerator()
	}); err != nil {
		return nil, err
	}

	// Register analyzers
	if err := container.Provide(func(f *factory.AnalyzerFactory) core.SpamAnalyzer {
		return f.CreateSpamDetector()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.AnalyzerFactory) core.EventExtractor {
		return f.CreateEventExtractor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.AnalyzerFactory) core.LanguageDetector {
		return f.CreateLanguageDetector()
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(core.NewTriageService); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	// Set collaborator call policy
	v.Set("collab.timeout", flags.CollabTimeout)

	// Set spam scoring defaults and trusted domains
	v.Set("spam.weights.domain_mismatch", 0.30)
	v.Set("spam.weights.suspicious_links", 0.25)
	v.Set("spam.weights.urgency_words", 0.20)
	v.Set("spam.weights.grammar_issues", 0.10)
	v.Set("spam.weights.known_patterns", 0.35)
	if flags.TrustedDomains != "" {
		domains := strings.Split(flags.TrustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("spam.trusted_domains", domains)
	} else {
		v.Set("spam.trusted_domains", []string{})
	}

	// Set language detection defaults
	v.Set("language.min_confidence", 0.65)

	return config.NewFromViper(v)
}
