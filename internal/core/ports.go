package core

import (
	"context"
)

// Summarizer condenses an email into a short summary with key points
// and action items. Implementations must not fail: on any error they
// degrade to a raw-text fallback.
type Summarizer interface {
	Summarize(ctx context.Context, email *Email) (*SummaryResult, error)
}

// LanguageDetector identifies the language an email is written in.
// Implementations must not fail; the contract requires a heuristic
// fallback when no signal is available.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, email *Email) (*LanguageResult, error)
}

// ReplyGenerator drafts a reply suggestion from an email, its summary
// and the detected language. Implementations must not fail.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, email *Email, summary *SummaryResult, language *LanguageResult) (*ReplyResult, error)
}

// SpamAnalyzer is the local weighted spam scorer. It is pure and never
// fails.
type SpamAnalyzer interface {
	Detect(email *Email) *SpamResult
}

// EventExtractor is the local calendar-event extractor. It returns nil
// when the email carries no meeting.
type EventExtractor interface {
	Extract(email *Email) *CalendarEvent
}

// EventSerializer renders a calendar event as ICS text.
type EventSerializer interface {
	Serialize(event *CalendarEvent) (string, error)
}
