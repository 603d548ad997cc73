package core

import (
	"github.com/mikey/mail-triage/internal/heuristics"
)

// DerivePriority classifies an email from the aggregate analyzer
// signals. Precedence: a spam verdict forces low and overrides
// everything else; a calendar event or urgent wording forces high;
// newsletter wording forces low; anything else is medium.
func DerivePriority(spam *SpamResult, event *CalendarEvent, text string) Priority {
	switch {
	case spam != nil && spam.IsSpam:
		return PriorityLow
	case event != nil || heuristics.HasUrgentKeywords(text):
		return PriorityHigh
	case heuristics.HasNewsletterKeywords(text):
		return PriorityLow
	default:
		return PriorityMedium
	}
}
