// Package calendar pushes booking groups to an external calendar provider.
// Everything here is best-effort: a provider failure must never affect a
// committed booking.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Event describes the single calendar event kept per (teacher, date, timeslot).
type Event struct {
	SubjectName string
	TeacherName string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

type Provider interface {
	// CreateEvent creates the event and returns the provider's event id.
	CreateEvent(ctx context.Context, event Event) (string, error)
	// AddAttendees adds the given attendees to an existing event, skipping
	// ones already invited.
	AddAttendees(ctx context.Context, eventID string, attendees []string) error
}

// Timezone the lessons are scheduled in.
const Timezone = "Europe/Bucharest"

// SlotTimes resolves a timeslot label like "16:00 - 17:30" against a calendar
// day into concrete start and end times in the lesson timezone.
func SlotTimes(date time.Time, timeslot string) (time.Time, time.Time, error) {
	parts := strings.Split(timeslot, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed timeslot %q", timeslot)
	}

	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := atTime(date, strings.TrimSpace(parts[0]), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := atTime(date, strings.TrimSpace(parts[1]), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

func atTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed time %q: %w", hhmm, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
