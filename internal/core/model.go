package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidEmail is returned when an email fails validation before the
// pipeline runs. Callers map it to a client error.
var ErrInvalidEmail = errors.New("invalid email")

// Email represents an inbound email message. It is the immutable input
// of the triage pipeline; analyzers read it and never modify it.
type Email struct {
	From        string   `json:"from"`
	To          []string `json:"to,omitempty"`
	Cc          []string `json:"cc,omitempty"`
	Bcc         []string `json:"bcc,omitempty"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
	Date        string   `json:"date,omitempty"`
}

// Validate checks that the email carries the fields the pipeline needs.
// The From header may be a bare address or "Display Name <addr>".
func (e *Email) Validate() error {
	if strings.TrimSpace(e.From) == "" {
		return fmt.Errorf("%w: missing from address", ErrInvalidEmail)
	}
	if _, err := mail.ParseAddress(e.From); err != nil {
		return fmt.Errorf("%w: unparseable from address %q", ErrInvalidEmail, e.From)
	}
	if strings.TrimSpace(e.Subject) == "" && strings.TrimSpace(e.Body) == "" {
		return fmt.Errorf("%w: subject and body are both empty", ErrInvalidEmail)
	}
	return nil
}

// SenderAddress returns the bare, lowercased address part of From.
func (e *Email) SenderAddress() string {
	if addr, err := mail.ParseAddress(e.From); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(strings.TrimSpace(e.From))
}

// SenderName returns the display-name part of From, if any.
func (e *Email) SenderName() string {
	if addr, err := mail.ParseAddress(e.From); err == nil {
		return strings.TrimSpace(addr.Name)
	}
	return ""
}

// Text returns the subject and body joined, the form most analyzers scan.
func (e *Email) Text() string {
	return e.Subject + "\n" + e.Body
}

// SpamFeatures is the fixed set of boolean signals the spam detector
// extracts. Each feature is independently weighted.
type SpamFeatures struct {
	SenderDomainMismatch bool `json:"sender_domain_mismatch"`
	SuspiciousLinks      bool `json:"suspicious_links"`
	UrgencyWords         bool `json:"urgency_words"`
	GrammarIssues        bool `json:"grammar_issues"`
	KnownSpamPatterns    bool `json:"known_spam_patterns"`
}

// SpamResult represents the outcome of the weighted spam analysis.
type SpamResult struct {
	Score    float64      `json:"score"`
	IsSpam   bool         `json:"is_spam"`
	Reasons  []string     `json:"reasons"`
	Features SpamFeatures `json:"features"`
}

// CalendarEvent is a fully populated meeting event extracted from an
// email. The extractor yields either a complete event or nothing.
type CalendarEvent struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"date"`
	End         time.Time `json:"end_date"`
	Location    string    `json:"location,omitempty"`
	Attendees   []string  `json:"attendees"`
	Description string    `json:"description,omitempty"`
	ICS         string    `json:"ics_content,omitempty"`
}

// LanguageResult is the language detector's verdict.
type LanguageResult struct {
	Code       string  `json:"language"`
	Name       string  `json:"language_name"`
	Confidence float64 `json:"confidence"`
}

// SummaryResult is the summarizer collaborator's output.
type SummaryResult struct {
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	ActionItems []string `json:"action_items"`
}

// ReplyResult is the reply-generation collaborator's output.
type ReplyResult struct {
	Reply string `json:"reply"`
	Tone  string `json:"tone"`
}

// Priority classifies how soon an email deserves attention.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TriageResult is the pipeline's sole output, assembled once per
// ProcessEmail call and discarded afterwards.
type TriageResult struct {
	Summary          string          `json:"summary"`
	Priority         Priority        `json:"priority"`
	SuggestedReply   *string         `json:"suggested_reply"`
	SpamScore        float64         `json:"spam_score"`
	Spam             *SpamResult     `json:"spam"`
	CalendarEvent    *CalendarEvent  `json:"calendar_event"`
	ActionsTaken     []string        `json:"actions_taken"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	DetectedLanguage *LanguageResult `json:"detected_language,omitempty"`
}
