// Package calendar implements the natural-language calendar-event
// extractor. An email only yields an event when it both reads like a
// meeting and contains a parseable date; there are no partial events.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/utils"
)

const (
	defaultDuration   = 60 * time.Minute
	maxEndGap         = 12 * time.Hour
	maxDescriptionLen = 500
	minLocationLen    = 3
	maxLocationLen    = 100
)

// meetingIndicators gate the extractor: without one of these phrases
// the email is not treated as a meeting, no matter what dates it holds.
var meetingIndicators = []string{
	"meeting", "meet", "call", "sync", "schedule", "appointment",
	"let's meet", "let's discuss", "let's connect", "catch up",
	"join us", "join the call", "please attend", "please confirm",
}

var (
	durationPattern = regexp.MustCompile(`(?i)\b(?:for\s+)?(\d+(?:\.\d+)?)\s*(hours?|hrs?|minutes?|mins?)\b`)

	emailAddrPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	replyPrefixPattern = regexp.MustCompile(`(?i)^(?:re|fwd?|aw|wg)\s*:\s*`)

	bodyTitlePattern = regexp.MustCompile(`(?i)\b(?:meeting|call|discussion|sync)\s+(?:about|for|on|regarding)\s+([^\n.,;]{3,80})`)

	// Location patterns, tried in order; first plausible match wins.
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:in|at)\s+(?:the\s+)?((?:conference\s+room|meeting\s+room|room|building|office)\s+[\w.-]+)`),
		regexp.MustCompile(`(?i)\b(?:location|venue|place)\s*[:\-]\s*([^\r\n.;]+)`),
		regexp.MustCompile(`(?i)\b(https?://[^\s]*(?:zoom\.us|teams\.microsoft\.com|meet\.google\.com|webex\.com)[^\s]*)`),
		regexp.MustCompile(`(?i)\b(?:join us at|meet at)\s+([^\r\n.;,]+)`),
	}
)

// Extractor pulls meeting events out of email text. It is
// deterministic for a fixed clock.
type Extractor struct {
	serializer core.EventSerializer
	text       *utils.TextProcessor
	logger     *zap.Logger
	parser     *when.Parser
	now        func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock fixes the reference time used to resolve relative dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates an extractor backed by the English
// natural-language date rules.
func NewExtractor(serializer core.EventSerializer, text *utils.TextProcessor, logger *zap.Logger, opts ...Option) *Extractor {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	e := &Extractor{
		serializer: serializer,
		text:       text,
		logger:     logger,
		parser:     parser,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the meeting event described by the email, or nil
// when the meeting gate or the date parse fails.
func (e *Extractor) Extract(email *core.Email) *core.CalendarEvent {
	text := email.Text()
	if !hasMeetingIndicator(text) {
		return nil
	}

	base := e.now()
	hit, err := e.parser.Parse(text, base)
	if err != nil || hit == nil {
		return nil
	}

	start := preferFuture(hit.Time, base)
	end := e.resolveEnd(text, hit, start)

	event := &core.CalendarEvent{
		Title:       deriveTitle(email.Subject, email.Body),
		Start:       start,
		End:         end,
		Location:    extractLocation(text),
		Attendees:   extractAttendees(email),
		Description: e.buildDescription(email),
	}

	ics, err := e.serializer.Serialize(event)
	if err != nil {
		// The event itself is still valid without the attachment.
		e.logger.Warn("Failed to serialize calendar event", zap.Error(err))
	} else {
		event.ICS = ics
	}

	e.logger.Debug("Extracted calendar event",
		zap.String("title", event.Title),
		zap.Time("start", event.Start),
		zap.Int("attendees", len(event.Attendees)))

	return event
}

func hasMeetingIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range meetingIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// preferFuture rolls a just-passed date forward day by day, leaving
// genuinely historical dates alone.
func preferFuture(t, base time.Time) time.Time {
	if t.After(base) || base.Sub(t) > 7*24*time.Hour {
		return t
	}
	for i := 0; i < 7 && t.Before(base); i++ {
		t = t.Add(24 * time.Hour)
	}
	return t
}

// resolveEnd uses an explicit second time after the start mention, then
// an explicit duration, then the default 60 minutes.
func (e *Extractor) resolveEnd(text string, hit *when.Result, start time.Time) time.Time {
	rest := text[hit.Index+len(hit.Text):]
	if second, err := e.parser.Parse(rest, start); err == nil && second != nil {
		if second.Time.After(start) && second.Time.Sub(start) <= maxEndGap {
			return second.Time
		}
	}
	if d, ok := explicitDuration(text); ok {
		return start.Add(d)
	}
	return start.Add(defaultDuration)
}

func explicitDuration(text string) (time.Duration, bool) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	if strings.HasPrefix(unit, "hour") || strings.HasPrefix(unit, "hr") {
		return time.Duration(value * float64(time.Hour)), true
	}
	return time.Duration(value * float64(time.Minute)), true
}

func extractLocation(text string) string {
	for _, pattern := range locationPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		loc := strings.TrimSpace(m[1])
		if len(loc) >= minLocationLen && len(loc) < maxLocationLen {
			return loc
		}
	}
	return ""
}

// extractAttendees returns the sender first, then every address-shaped
// token from the text, lowercased and deduplicated in discovery order.
func extractAttendees(email *core.Email) []string {
	attendees := []string{}
	seen := map[string]bool{}
	add := func(addr string) {
		addr = strings.ToLower(addr)
		if addr != "" && !seen[addr] {
			seen[addr] = true
			attendees = append(attendees, addr)
		}
	}

	add(email.SenderAddress())
	for _, m := range emailAddrPattern.FindAllString(email.Text(), -1) {
		add(m)
	}
	return attendees
}

func deriveTitle(subject, body string) string {
	title := strings.TrimSpace(subject)
	hadPrefix := replyPrefixPattern.MatchString(title)
	for replyPrefixPattern.MatchString(title) {
		title = strings.TrimSpace(replyPrefixPattern.ReplaceAllString(title, ""))
	}
	// A reply/forward subject is a weak title; prefer an explicit
	// "meeting about X" phrase from the body when one exists.
	if hadPrefix || title == "" {
		if m := bodyTitlePattern.FindStringSubmatch(body); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if title != "" {
		return title
	}
	return "Meeting"
}

func (e *Extractor) buildDescription(email *core.Email) string {
	body := e.text.TruncateText(strings.TrimSpace(email.Body), maxDescriptionLen)
	return fmt.Sprintf("From: %s\n\n%s", email.From, body)
}
