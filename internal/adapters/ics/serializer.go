// Package ics renders calendar events as iCalendar text.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/mikey/mail-triage/internal/core"
)

// Serializer implements core.EventSerializer on top of the iCalendar
// library, which handles RFC 5545 escaping and line folding.
type Serializer struct {
	now    func() time.Time
	newUID func() string
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithClock fixes the DTSTAMP clock.
func WithClock(now func() time.Time) Option {
	return func(s *Serializer) {
		s.now = now
	}
}

// WithUIDSource fixes UID generation.
func WithUIDSource(newUID func() string) Option {
	return func(s *Serializer) {
		s.newUID = newUID
	}
}

// NewSerializer creates a serializer with random UIDs and the wall
// clock.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{
		now: time.Now,
		newUID: func() string {
			return fmt.Sprintf("%s@mail-triage", uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize renders the event as a VCALENDAR block with a single
// VEVENT.
func (s *Serializer) Serialize(event *core.CalendarEvent) (string, error) {
	if event == nil {
		return "", fmt.Errorf("nil calendar event")
	}
	if event.End.Before(event.Start) {
		return "", fmt.Errorf("event ends before it starts")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodRequest)

	ev := cal.AddEvent(s.newUID())
	ev.SetDtStampTime(s.now().UTC())
	ev.SetStartAt(event.Start)
	ev.SetEndAt(event.End)
	ev.SetSummary(event.Title)
	if event.Location != "" {
		ev.SetLocation(event.Location)
	}
	if event.Description != "" {
		ev.SetDescription(event.Description)
	}
	for _, attendee := range event.Attendees {
		ev.AddAttendee(attendee,
			ical.CalendarUserTypeIndividual,
			ical.ParticipationStatusNeedsAction,
			ical.ParticipationRoleReqParticipant)
	}

	return cal.Serialize(), nil
}
