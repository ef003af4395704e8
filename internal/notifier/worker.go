package notifier

import (
	"booking-service/internal/events"
	"booking-service/internal/model"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Worker consumes booking events off NATS and sends the pending and
// group-confirmed emails. Delivery is best-effort; failures are logged and
// the event is dropped.
type Worker struct {
	natsConn             *nats.Conn
	mailer               *Mailer
	fallbackTeacherEmail string
}

func Start(natsURL string, mailer *Mailer, fallbackTeacherEmail string) (*Worker, error) {
	if mailer == nil {
		slog.Info("SMTP credentials not found. Worker will run in MOCK mode.")
	}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	worker := &Worker{
		natsConn:             nc,
		mailer:               mailer,
		fallbackTeacherEmail: fallbackTeacherEmail,
	}

	if _, err := nc.Subscribe(events.SubjectBookingPending, worker.handleBookingPending); err != nil {
		nc.Close()
		return nil, err
	}

	if _, err := nc.Subscribe(events.SubjectGroupConfirmed, worker.handleGroupConfirmed); err != nil {
		nc.Close()
		return nil, err
	}

	return worker, nil
}

func (w *Worker) Close() {
	w.natsConn.Close()
}

func (w *Worker) handleBookingPending(msg *nats.Msg) {
	var event events.BookingPendingEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Error unmarshalling event", slog.String("error", err.Error()))
		return
	}

	booking := event.Booking
	slog.Info("Event received: booking pending",
		slog.Int64("booking_id", booking.ID),
		slog.Bool("switched", event.Switched),
	)

	subject, body := pendingTeacherMail(booking, event.Switched)
	w.send(w.teacherEmail(booking), subject, body)

	subject, body = pendingStudentMail(booking, event.Switched)
	w.send(booking.StudentEmail, subject, body)
}

func (w *Worker) handleGroupConfirmed(msg *nats.Msg) {
	var event events.GroupConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Error unmarshalling event", slog.String("error", err.Error()))
		return
	}

	if len(event.Bookings) == 0 {
		return
	}

	slog.Info("Event received: group confirmed",
		slog.Int64("teacher_id", event.Bookings[0].TeacherID),
		slog.Int("size", len(event.Bookings)),
	)

	subject, body := confirmedTeacherMail(event.Bookings)
	w.send(w.teacherEmail(event.Bookings[0]), subject, body)

	for _, booking := range event.Bookings {
		subject, body := confirmedStudentMail(booking, len(event.Bookings))
		w.send(booking.StudentEmail, subject, body)
	}
}

func (w *Worker) send(to, subject, body string) {
	if err := w.mailer.Send(to, subject, body); err != nil {
		slog.Error("Failed to send mail",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		return
	}

	slog.Info("Mail sent", slog.String("to", to), slog.String("subject", subject))
}

func (w *Worker) teacherEmail(b model.BookingDetails) string {
	if b.TeacherEmail != nil && *b.TeacherEmail != "" {
		return *b.TeacherEmail
	}
	return w.fallbackTeacherEmail
}
