package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/adapters/ics"
	"github.com/mikey/mail-triage/internal/adapters/language"
	"github.com/mikey/mail-triage/internal/calendar"
	"github.com/mikey/mail-triage/internal/config"
	"github.com/mikey/mail-triage/internal/spam"
	"github.com/mikey/mail-triage/internal/utils"
)

// AnalyzerFactory builds the local analyzers and their collaborators
// from configuration.
type AnalyzerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *AnalyzerFactory {
	return &AnalyzerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateSpamDetector builds the weighted spam scorer from the
// configured weights and trusted domains.
func (f *AnalyzerFactory) CreateSpamDetector() *spam.Detector {
	c := f.cfg.GetSpam()
	weights := spam.FeatureWeights{
		DomainMismatch:  c.DomainMismatchWeight,
		SuspiciousLinks: c.SuspiciousLinksWeight,
		UrgencyWords:    c.UrgencyWordsWeight,
		GrammarIssues:   c.GrammarIssuesWeight,
		KnownPatterns:   c.KnownPatternsWeight,
	}
	return spam.NewDetector(weights, c.TrustedDomains, f.logger)
}

// CreateEventExtractor builds the calendar extractor with its ICS
// serializer.
func (f *AnalyzerFactory) CreateEventExtractor() *calendar.Extractor {
	return calendar.NewExtractor(ics.NewSerializer(), f.textProcessor, f.logger)
}

// CreateLanguageDetector builds the language detector.
func (f *AnalyzerFactory) CreateLanguageDetector() *language.Detector {
	return language.NewDetector(f.cfg.GetLanguage().MinConfidence, f.logger)
}
