package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/adapters/httpapi"
	"github.com/mikey/mail-triage/internal/adapters/smtpfilter"
	"github.com/mikey/mail-triage/internal/config"
	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/factory"
	"github.com/mikey/mail-triage/internal/logging"
	"github.com/mikey/mail-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
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
	if err := container.Provide(func(f *factory.AnalyzerFactory, cfg *config.Config, logger *zap.Logger) core.SpamAnalyzer {
		c := cfg.GetSpam()
		if len(c.TrustedDomains) > 0 {
			logger.Info("Loaded trusted domains", zap.Strings("domains", c.TrustedDomains))
		}
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

	// Register HTTP API server
	if err := container.Provide(func(
		service *core.TriageService,
		spam core.SpamAnalyzer,
		calendar core.EventExtractor,
		language core.LanguageDetector,
		logger *zap.Logger,
		cfg *config.Config,
	) *httpapi.Server {
		return httpapi.New(service, spam, calendar, language, logger, httpapi.ServerOptions{
			Addr: cfg.GetHTTP().ListenAddress,
		})
	}); err != nil {
		return nil, err
	}

	// Register SMTP content filter
	if err := container.Provide(func(
		service *core.TriageService,
		logger *zap.Logger,
		cfg *config.Config,
	) *smtpfilter.Filter {
		return smtpfilter.NewFilter(service, logger, cfg.GetSMTP())
	}); err != nil {
		return nil, err
	}

	return container, nil
}
