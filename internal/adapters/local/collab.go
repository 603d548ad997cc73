package local

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
)

// The fallback decorators make the must-not-throw collaborator
// contract structural: a primary (LLM-backed) collaborator that errors
// or overruns its deadline is answered by the local implementation.
// There are no retries; the timeout is the whole call policy.

// FallbackSummarizer wraps a primary summarizer with the local one.
type FallbackSummarizer struct {
	primary core.Summarizer
	local   *Summarizer
	timeout time.Duration
	logger  *zap.Logger
}

// NewFallbackSummarizer creates the decorator.
func NewFallbackSummarizer(primary core.Summarizer, local *Summarizer, timeout time.Duration, logger *zap.Logger) *FallbackSummarizer {
	return &FallbackSummarizer{primary: primary, local: local, timeout: timeout, logger: logger}
}

// Summarize delegates to the primary and degrades to the local
// summarizer on any failure. The returned error is always nil.
func (f *FallbackSummarizer) Summarize(ctx context.Context, email *core.Email) (*core.SummaryResult, error) {
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.primary.Summarize(cctx, email)
	if err != nil {
		f.logger.Warn("Summarizer degraded to local fallback", zap.Error(err))
		return f.local.Summarize(ctx, email)
	}
	return result, nil
}

// Close forwards to the primary when it holds resources.
func (f *FallbackSummarizer) Close() error {
	if closer, ok := f.primary.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// FallbackReplyGenerator wraps a primary reply generator with the
// local one.
type FallbackReplyGenerator struct {
	primary core.ReplyGenerator
	local   *ReplyGenerator
	timeout time.Duration
	logger  *zap.Logger
}

// NewFallbackReplyGenerator creates the decorator.
func NewFallbackReplyGenerator(primary core.ReplyGenerator, local *ReplyGenerator, timeout time.Duration, logger *zap.Logger) *FallbackReplyGenerator {
	return &FallbackReplyGenerator{primary: primary, local: local, timeout: timeout, logger: logger}
}

// GenerateReply delegates to the primary and degrades to the local
// generator on any failure. The returned error is always nil.
func (f *FallbackReplyGenerator) GenerateReply(ctx context.Context, email *core.Email, summary *core.SummaryResult, lang *core.LanguageResult) (*core.ReplyResult, error) {
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.primary.GenerateReply(cctx, email, summary, lang)
	if err != nil {
		f.logger.Warn("Reply generator degraded to local fallback", zap.Error(err))
		return f.local.GenerateReply(ctx, email, summary, lang)
	}
	return result, nil
}
