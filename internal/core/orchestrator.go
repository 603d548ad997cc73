package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TriageService coordinates the triage pipeline: it fans the four
// phase-1 analyzers out concurrently, gates reply generation on the
// spam verdict and derives the final priority.
type TriageService struct {
	summarizer Summarizer
	spam       SpamAnalyzer
	calendar   EventExtractor
	language   LanguageDetector
	replies    ReplyGenerator
	logger     *zap.Logger
}

// NewTriageService creates a new triage service.
func NewTriageService(
	summarizer Summarizer,
	spam SpamAnalyzer,
	calendar EventExtractor,
	language LanguageDetector,
	replies ReplyGenerator,
	logger *zap.Logger,
) *TriageService {
	return &TriageService{
		summarizer: summarizer,
		spam:       spam,
		calendar:   calendar,
		language:   language,
		replies:    replies,
		logger:     logger,
	}
}

// actionLog is the append-only audit of pipeline decisions. Phase-1
// entries are appended from concurrent goroutines, so the recording
// order of settle entries varies across runs.
type actionLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *actionLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

// ProcessEmail runs the full triage pipeline on one email. It returns
// an error only for invalid input; analyzer failures are absorbed by
// each analyzer's own fallback policy.
func (s *TriageService) ProcessEmail(ctx context.Context, email *Email) (*TriageResult, error) {
	if err := email.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := &actionLog{}

	var (
		summary *SummaryResult
		spamRes *SpamResult
		event   *CalendarEvent
		langRes *LanguageResult
	)

	// Phase 1: the four analyzers run concurrently over the immutable
	// email, each writing only its own slot. Wall time for the phase is
	// the slowest analyzer, not the sum.
	g, gctx := errgroup.WithContext(ctx)

	log.add("Summarization started")
	g.Go(func() error {
		res, err := s.summarizer.Summarize(gctx, email)
		if err != nil {
			// Contract violation: collaborators degrade internally.
			s.logger.Error("Summarizer returned an error", zap.Error(err))
			res = &SummaryResult{Summary: email.Body, KeyPoints: []string{}, ActionItems: []string{}}
		}
		summary = res
		log.add("Summarization completed")
		return nil
	})

	log.add("Spam analysis started")
	g.Go(func() error {
		spamRes = s.spam.Detect(email)
		log.add("Spam analysis completed")
		return nil
	})

	log.add("Calendar extraction started")
	g.Go(func() error {
		event = s.calendar.Extract(email)
		if event != nil {
			log.add("Calendar event extracted")
		} else {
			log.add("No calendar event found")
		}
		return nil
	})

	log.add("Language detection started")
	g.Go(func() error {
		res, err := s.language.DetectLanguage(gctx, email)
		if err != nil {
			s.logger.Error("Language detector returned an error", zap.Error(err))
			res = &LanguageResult{Code: "en", Name: "English", Confidence: 0.7}
		}
		langRes = res
		log.add("Language detection completed")
		return nil
	})

	// The goroutines never return errors; Wait is only the barrier.
	_ = g.Wait()

	result := &TriageResult{
		SpamScore:        spamRes.Score,
		Spam:             spamRes,
		CalendarEvent:    event,
		DetectedLanguage: langRes,
	}

	// Phase 2: reply generation runs strictly after the barrier because
	// its prompt depends on the summary and language results. Spam
	// emails get neither a reply nor a displayed summary.
	if spamRes.IsSpam {
		log.add("Spam detected (score=%.2f)", spamRes.Score)
		log.add("Reply skipped (spam detected)")
		s.logger.Info("Skipping reply generation for spam email",
			zap.String("sender", email.From),
			zap.Float64("score", spamRes.Score))
	} else {
		log.add("Reply generation started")
		reply, err := s.replies.GenerateReply(ctx, email, summary, langRes)
		if err != nil {
			s.logger.Error("Reply generator returned an error", zap.Error(err))
			log.add("Reply generation failed")
		} else {
			result.SuggestedReply = &reply.Reply
			log.add("Reply generation completed")
		}
		result.Summary = summary.Summary
	}

	result.Priority = DerivePriority(spamRes, event, email.Text())
	result.ActionsTaken = log.entries
	result.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.logger.Info("Email triaged",
		zap.String("sender", email.From),
		zap.String("priority", string(result.Priority)),
		zap.Bool("is_spam", spamRes.IsSpam),
		zap.Bool("calendar_event", event != nil),
		zap.Int64("processing_time_ms", result.ProcessingTimeMs))

	return result, nil
}
