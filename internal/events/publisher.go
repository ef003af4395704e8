package events

import (
	"booking-service/internal/model"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectBookingPending = "booking.pending"
	SubjectGroupConfirmed = "booking.group_confirmed"
)

// EventPublisher is the notification trigger contract of the booking core.
// Publishing is fire-and-forget: callers log failures and never roll back a
// committed booking because of them.
type EventPublisher interface {
	PublishBookingPending(booking model.BookingDetails, switched bool) error
	PublishGroupConfirmed(bookings []model.BookingDetails) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type BookingPendingEvent struct {
	EventID   uuid.UUID            `json:"event_id"`
	EventType string               `json:"event_type"`
	Booking   model.BookingDetails `json:"booking"`
	Switched  bool                 `json:"switched"`
	CreatedAt time.Time            `json:"created_at"`
}

type GroupConfirmedEvent struct {
	EventID   uuid.UUID              `json:"event_id"`
	EventType string                 `json:"event_type"`
	Bookings  []model.BookingDetails `json:"bookings"`
	CreatedAt time.Time              `json:"created_at"`
}

func (p *NatsPublisher) PublishBookingPending(booking model.BookingDetails, switched bool) error {
	event := BookingPendingEvent{
		EventID:   uuid.New(),
		EventType: SubjectBookingPending,
		Booking:   booking,
		Switched:  switched,
		CreatedAt: time.Now(),
	}

	return p.publish(SubjectBookingPending, event)
}

func (p *NatsPublisher) PublishGroupConfirmed(bookings []model.BookingDetails) error {
	event := GroupConfirmedEvent{
		EventID:   uuid.New(),
		EventType: SubjectGroupConfirmed,
		Bookings:  bookings,
		CreatedAt: time.Now(),
	}

	return p.publish(SubjectGroupConfirmed, event)
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		slog.Error("Error marshalling event JSON", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	slog.Info("Published event to NATS", slog.String("subject", subject))

	return nil
}
