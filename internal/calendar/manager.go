package calendar

import (
	"booking-service/internal/model"
	"booking-service/internal/repository"
	"context"
	"fmt"
	"time"
)

// Manager keeps one provider event per (teacher, date, timeslot): the first
// booking in a slot creates the event, later bookings are added as attendees.
// The provider's event id is remembered in the calendar_events table.
type Manager struct {
	provider   Provider
	eventsRepo repository.CalendarEventRepository
}

// NewManager accepts a nil provider, in which case UpsertEvent is a no-op, so
// a deployment without calendar credentials keeps booking normally.
func NewManager(provider Provider, eventsRepo repository.CalendarEventRepository) *Manager {
	return &Manager{provider: provider, eventsRepo: eventsRepo}
}

func (m *Manager) Enabled() bool {
	return m != nil && m.provider != nil
}

func (m *Manager) UpsertEvent(ctx context.Context, teacherID int64, date time.Time, timeslot, subjectName, teacherName string, attendees []string) (string, error) {
	if !m.Enabled() {
		return "", nil
	}

	existing, err := m.eventsRepo.FindBySlot(ctx, teacherID, date, timeslot)
	if err != nil {
		return "", fmt.Errorf("find calendar event: %w", err)
	}

	if existing != nil {
		if err := m.provider.AddAttendees(ctx, existing.ExternalEventID, attendees); err != nil {
			return "", err
		}
		return existing.ExternalEventID, nil
	}

	start, end, err := SlotTimes(date, timeslot)
	if err != nil {
		return "", err
	}

	externalID, err := m.provider.CreateEvent(ctx, Event{
		SubjectName: subjectName,
		TeacherName: teacherName,
		Start:       start,
		End:         end,
		Attendees:   attendees,
	})
	if err != nil {
		return "", err
	}

	event := &model.CalendarEvent{
		TeacherID:       teacherID,
		Date:            date,
		Timeslot:        timeslot,
		ExternalEventID: externalID,
	}
	if err := m.eventsRepo.Create(ctx, event); err != nil {
		// Two first bookings can race past FindBySlot; the loser hits the
		// unique slot key here. Attach to the winner's event instead. The
		// loser's provider event stays orphaned.
		winner, findErr := m.eventsRepo.FindBySlot(ctx, teacherID, date, timeslot)
		if findErr != nil || winner == nil {
			return "", fmt.Errorf("save calendar event: %w", err)
		}

		if err := m.provider.AddAttendees(ctx, winner.ExternalEventID, attendees); err != nil {
			return "", err
		}
		return winner.ExternalEventID, nil
	}

	return externalID, nil
}
