package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCanceled  BookingStatus = "CANCELED"
)

// Timeslot labels offered by the booking wizard. Bookings only ever
// reference one of these.
var Timeslots = []string{
	"16:00 - 17:30",
	"17:45 - 19:15",
	"19:30 - 21:00",
}

func IsValidTimeslot(ts string) bool {
	for _, t := range Timeslots {
		if t == ts {
			return true
		}
	}
	return false
}

type Booking struct {
	ID        int64         `db:"id" json:"id"`
	SubjectID int64         `db:"subject_id" json:"subject_id"`
	TeacherID int64         `db:"teacher_id" json:"teacher_id"`
	StudentID int64         `db:"student_id" json:"student_id"`
	Date      time.Time     `db:"date" json:"date"`
	Timeslot  string        `db:"timeslot" json:"timeslot"`
	Status    BookingStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// BookingDetails is a booking joined with its teacher, subject and student,
// as needed by notifications and calendar invites.
type BookingDetails struct {
	ID           int64     `db:"id" json:"id"`
	Date         time.Time `db:"date" json:"date"`
	Timeslot     string    `db:"timeslot" json:"timeslot"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	TeacherEmail *string   `db:"teacher_email" json:"teacher_email,omitempty"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	StudentName  string    `db:"student_name" json:"student_name"`
	StudentEmail string    `db:"student_email" json:"student_email"`
	StudentPhone *string   `db:"student_phone" json:"student_phone,omitempty"`
}

// DateKey returns the calendar-day key used for slot grouping.
func DateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
