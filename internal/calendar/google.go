package calendar

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider writes events to a Google calendar through a service
// account.
type GoogleProvider struct {
	service    *gcal.Service
	calendarID string
}

func NewGoogleProvider(ctx context.Context, serviceAccountKey []byte, calendarID string) (*GoogleProvider, error) {
	config, err := google.JWTConfigFromJSON(serviceAccountKey, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = "primary"
	}

	return &GoogleProvider{service: service, calendarID: calendarID}, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, event Event) (string, error) {
	attendees := make([]*gcal.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	body := &gcal.Event{
		Summary:     fmt.Sprintf("Lecție Demo: %s", event.SubjectName),
		Description: fmt.Sprintf("Profesor: %s\nLecție programată", event.TeacherName),
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format("2006-01-02T15:04:05-07:00"),
			TimeZone: Timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format("2006-01-02T15:04:05-07:00"),
			TimeZone: Timezone,
		},
		Attendees: attendees,
	}

	created, err := p.service.Events.Insert(p.calendarID, body).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	return created.Id, nil
}

func (p *GoogleProvider) AddAttendees(ctx context.Context, eventID string, attendees []string) error {
	existing, err := p.service.Events.Get(p.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	current := existing.Attendees
	changed := false
	for _, email := range attendees {
		if !hasAttendee(current, email) {
			current = append(current, &gcal.EventAttendee{Email: email})
			changed = true
		}
	}

	if !changed {
		return nil
	}

	patch := &gcal.Event{Attendees: current}
	if _, err := p.service.Events.Patch(p.calendarID, eventID, patch).SendUpdates("all").Context(ctx).Do(); err != nil {
		return fmt.Errorf("patch event: %w", err)
	}

	return nil
}

func hasAttendee(attendees []*gcal.EventAttendee, email string) bool {
	for _, a := range attendees {
		if a.Email == email {
			return true
		}
	}
	return false
}
