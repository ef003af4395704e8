package model

import "time"

// CalendarEvent links a (teacher, date, timeslot) group to the event created
// at the external calendar provider. At most one row per slot per teacher.
type CalendarEvent struct {
	ID              int64     `db:"id" json:"id"`
	TeacherID       int64     `db:"teacher_id" json:"teacher_id"`
	Date            time.Time `db:"date" json:"date"`
	Timeslot        string    `db:"timeslot" json:"timeslot"`
	ExternalEventID string    `db:"external_event_id" json:"external_event_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
