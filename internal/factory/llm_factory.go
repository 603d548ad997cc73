package factory

import (
	"context"
	"fmt"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/adapters/bedrock"
	"github.com/mikey/mail-triage/internal/adapters/gemini"
	"github.com/mikey/mail-triage/internal/adapters/local"
	"github.com/mikey/mail-triage/internal/adapters/openai"
	"github.com/mikey/mail-triage/internal/config"
	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/utils"
)

// llmClient is what every provider adapter implements: both LLM-backed
// collaborator roles.
type llmClient interface {
	core.Summarizer
	core.ReplyGenerator
}

// LLMFactory builds the summarizer and reply-generation collaborators.
// The underlying provider client is created once and shared; every
// LLM-backed collaborator is wrapped in the local fallback decorator.
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor

	once   sync.Once
	client llmClient
	err    error
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// providerClient returns the shared provider client, nil for the
// "none" provider.
func (f *LLMFactory) providerClient() (llmClient, error) {
	f.once.Do(func() {
		f.client, f.err = f.createClient()
	})
	return f.client, f.err
}

func (f *LLMFactory) createClient() (llmClient, error) {
	provider := f.cfg.GetLLM().Provider
	switch provider {
	case "", "none":
		return nil, nil
	case "openai":
		c := f.cfg.GetOpenAI()
		return openai.NewClient(c.APIKey, c.ModelName, c.MaxTokens, c.Temperature, c.TopP, c.MaxBodySize, f.logger, f.textProcessor), nil
	case "gemini":
		c := f.cfg.GetGemini()
		return gemini.NewClient(c.APIKey, c.ModelName, c.MaxTokens, c.Temperature, c.TopP, c.MaxBodySize, f.logger, f.textProcessor)
	case "bedrock":
		c := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.NewClient(client, c.ModelID, c.MaxTokens, c.Temperature, c.TopP, c.MaxBodySize, f.logger, f.textProcessor), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateSummarizer builds the summarizer collaborator.
func (f *LLMFactory) CreateSummarizer() (core.Summarizer, error) {
	localSummarizer := local.NewSummarizer(f.logger)
	client, err := f.providerClient()
	if err != nil {
		return nil, err
	}
	if client == nil {
		return localSummarizer, nil
	}
	return local.NewFallbackSummarizer(client, localSummarizer, f.cfg.GetCollab().Timeout, f.logger), nil
}

// CreateReplyGenerator builds the reply-generation collaborator.
func (f *LLMFactory) CreateReplyGenerator() (core.ReplyGenerator, error) {
	localReplies := local.NewReplyGenerator(f.logger)
	client, err := f.providerClient()
	if err != nil {
		return nil, err
	}
	if client == nil {
		return localReplies, nil
	}
	return local.NewFallbackReplyGenerator(client, localReplies, f.cfg.GetCollab().Timeout, f.logger), nil
}
