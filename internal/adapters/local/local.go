// Package local provides deterministic, model-free collaborators. They
// serve as the "none" provider and as the degradation target wrapped
// around every LLM-backed collaborator.
package local

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/heuristics"
)

const maxSummaryLen = 300

var sentenceEndPattern = regexp.MustCompile(`[.!?]\s+`)

// Summarizer produces a lead-sentence summary without calling any
// model.
type Summarizer struct {
	logger *zap.Logger
}

// NewSummarizer creates a local summarizer.
func NewSummarizer(logger *zap.Logger) *Summarizer {
	return &Summarizer{logger: logger}
}

// Summarize returns the first sentences of the body as the summary.
// It never fails.
func (s *Summarizer) Summarize(ctx context.Context, email *core.Email) (*core.SummaryResult, error) {
	body := strings.TrimSpace(email.Body)
	if body == "" {
		body = strings.TrimSpace(email.Subject)
	}

	summary := leadSentences(body, 2)
	if len(summary) > maxSummaryLen {
		summary = strings.TrimSpace(summary[:maxSummaryLen]) + "..."
	}

	return &core.SummaryResult{
		Summary:     summary,
		KeyPoints:   []string{},
		ActionItems: []string{},
	}, nil
}

func leadSentences(text string, n int) string {
	bounds := sentenceEndPattern.FindAllStringIndex(text, n)
	if len(bounds) < n {
		return text
	}
	return strings.TrimSpace(text[:bounds[n-1][1]])
}

// ReplyGenerator drafts a short acknowledgement matched to the email's
// detected tone.
type ReplyGenerator struct {
	logger *zap.Logger
}

// NewReplyGenerator creates a local reply generator.
func NewReplyGenerator(logger *zap.Logger) *ReplyGenerator {
	return &ReplyGenerator{logger: logger}
}

// GenerateReply returns a tone-keyed template reply. It never fails.
func (g *ReplyGenerator) GenerateReply(ctx context.Context, email *core.Email, summary *core.SummaryResult, lang *core.LanguageResult) (*core.ReplyResult, error) {
	tone := heuristics.DetectTone(email.Subject, email.Body)
	name := salutationName(email)
	subject := strings.TrimSpace(email.Subject)
	if subject == "" {
		subject = "your message"
	} else {
		subject = fmt.Sprintf("%q", subject)
	}

	var reply string
	switch tone {
	case heuristics.ToneFormal:
		reply = fmt.Sprintf("Dear %s,\n\nThank you for your message regarding %s. I have received it and will respond in detail shortly.\n\nKind regards", name, subject)
	case heuristics.ToneCasual:
		reply = fmt.Sprintf("Hey %s! Thanks for reaching out about %s — I'll get back to you soon.", name, subject)
	default:
		reply = fmt.Sprintf("Hello %s,\n\nThanks for your message about %s. I'll follow up soon.", name, subject)
	}

	return &core.ReplyResult{Reply: reply, Tone: string(tone)}, nil
}

func salutationName(email *core.Email) string {
	if name := email.SenderName(); name != "" {
		return name
	}
	addr := email.SenderAddress()
	if at := strings.IndexByte(addr, '@'); at > 0 {
		return addr[:at]
	}
	return "there"
}
