package service

import (
	"booking-service/internal/calendar"
	"booking-service/internal/events"
	"booking-service/internal/model"
	"booking-service/internal/repository"
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrNoCapacity      = errors.New("no teacher has free capacity for this slot")
	ErrBookingNotFound = errors.New("booking not found")
)

type SubmitBookingInput struct {
	SubjectID    int64
	TeacherID    int64
	Date         time.Time
	Timeslot     string
	StudentName  string
	StudentEmail string
	StudentPhone *string
}

type SubmitBookingResult struct {
	Booking  model.Booking
	Details  model.BookingDetails
	Switched bool
}

type BookingService interface {
	SubmitBooking(ctx context.Context, input SubmitBookingInput) (*SubmitBookingResult, error)
	TryConfirmGroup(ctx context.Context, teacherID int64, date time.Time, timeslot string) error
	CancelBooking(ctx context.Context, bookingID int64) error
}

type bookingService struct {
	subjectRepo repository.SubjectRepository
	teacherRepo repository.TeacherRepository
	bookingRepo repository.BookingRepository
	publisher   events.EventPublisher
	calendar    *calendar.Manager
}

func NewBookingService(
	subjectRepo repository.SubjectRepository,
	teacherRepo repository.TeacherRepository,
	bookingRepo repository.BookingRepository,
	publisher events.EventPublisher,
	calendarManager *calendar.Manager,
) BookingService {
	return &bookingService{
		subjectRepo: subjectRepo,
		teacherRepo: teacherRepo,
		bookingRepo: bookingRepo,
		publisher:   publisher,
		calendar:    calendarManager,
	}
}

// SubmitBooking records a PENDING booking for the student, reallocating to
// another of the subject's teachers when the requested one is full. The
// capacity decision and the insert run under the slot lock, so the
// non-canceled count per (teacher, date, timeslot) never exceeds the
// subject's max capacity.
func (s *bookingService) SubmitBooking(ctx context.Context, input SubmitBookingInput) (*SubmitBookingResult, error) {
	subject, err := s.subjectRepo.FindByID(ctx, input.SubjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}

	teachers, err := s.teacherRepo.ListBySubject(ctx, subject.ID)
	if err != nil {
		return nil, err
	}
	if !teacherInSubject(teachers, input.TeacherID) {
		return nil, ErrTeacherNotFound
	}

	var (
		booking model.Booking
		teacher model.Teacher
		student model.Student
	)

	err = s.bookingRepo.WithSlotLock(ctx, subject.ID, input.Date, input.Timeslot, func(txRepo repository.BookingRepository) error {
		allocated, err := allocateTeacher(ctx, txRepo, teachers, input.TeacherID, subject.MaxCapacity, input.Date, input.Timeslot)
		if err != nil {
			return err
		}
		if allocated == nil {
			return ErrNoCapacity
		}
		teacher = *allocated

		student = model.Student{
			Name:  input.StudentName,
			Email: input.StudentEmail,
			Phone: input.StudentPhone,
		}
		if err := txRepo.UpsertStudent(ctx, &student); err != nil {
			return err
		}

		booking = model.Booking{
			SubjectID: subject.ID,
			TeacherID: teacher.ID,
			StudentID: student.ID,
			Date:      input.Date,
			Timeslot:  input.Timeslot,
			Status:    model.BookingStatusPending,
		}
		return txRepo.Create(ctx, &booking)
	})
	if err != nil {
		return nil, err
	}

	switched := teacher.ID != input.TeacherID
	details := model.BookingDetails{
		ID:           booking.ID,
		Date:         booking.Date,
		Timeslot:     booking.Timeslot,
		SubjectID:    subject.ID,
		SubjectName:  subject.Name,
		TeacherID:    teacher.ID,
		TeacherName:  teacher.Name,
		TeacherEmail: teacher.Email,
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		StudentPhone: student.Phone,
	}

	slog.Info("Booking created",
		slog.Int64("booking_id", booking.ID),
		slog.Int64("teacher_id", teacher.ID),
		slog.String("date", model.DateKey(booking.Date)),
		slog.String("timeslot", booking.Timeslot),
		slog.Bool("switched", switched),
	)
	bookingsCreatedTotal.WithLabelValues(subject.Name).Inc()

	// Calendar and notifications are best-effort once the booking is
	// committed; a provider failure must not surface to the student.
	s.upsertCalendarEvent(ctx, details)

	go s.publisher.PublishBookingPending(details, switched)

	if err := s.confirmGroup(ctx, subject, teacher.ID, input.Date, input.Timeslot); err != nil {
		slog.Error("Group confirmation check failed",
			slog.Int64("teacher_id", teacher.ID),
			slog.String("error", err.Error()),
		)
	}

	return &SubmitBookingResult{Booking: booking, Details: details, Switched: switched}, nil
}

// TryConfirmGroup re-runs the confirmation check for a slot, resolving the
// capacity through the teacher's subject.
func (s *bookingService) TryConfirmGroup(ctx context.Context, teacherID int64, date time.Time, timeslot string) error {
	teacher, err := s.teacherRepo.FindByID(ctx, teacherID)
	if err != nil {
		return err
	}
	if teacher == nil {
		return ErrTeacherNotFound
	}

	subject, err := s.subjectRepo.FindByID(ctx, teacher.SubjectID)
	if err != nil {
		return err
	}
	if subject == nil {
		return ErrSubjectNotFound
	}

	return s.confirmGroup(ctx, subject, teacherID, date, timeslot)
}

// confirmGroup promotes the slot's pending bookings to CONFIRMED once their
// count reaches the subject capacity. The pending set is re-fetched and
// updated by id under the slot lock, so a booking canceled in between is
// never confirmed and two concurrent triggers cannot both promote.
func (s *bookingService) confirmGroup(ctx context.Context, subject *model.Subject, teacherID int64, date time.Time, timeslot string) error {
	var confirmed []model.BookingDetails

	err := s.bookingRepo.WithSlotLock(ctx, subject.ID, date, timeslot, func(txRepo repository.BookingRepository) error {
		count, err := txRepo.CountPending(ctx, teacherID, date, timeslot)
		if err != nil {
			return err
		}
		if count < subject.MaxCapacity {
			return nil
		}

		pending, err := txRepo.ListPendingDetails(ctx, teacherID, date, timeslot)
		if err != nil {
			return err
		}
		if len(pending) < subject.MaxCapacity {
			return nil
		}

		ids := make([]int64, 0, len(pending))
		for _, b := range pending {
			ids = append(ids, b.ID)
		}
		if err := txRepo.ConfirmByIDs(ctx, ids); err != nil {
			return err
		}

		confirmed = pending
		return nil
	})
	if err != nil {
		return err
	}

	if len(confirmed) == 0 {
		return nil
	}

	slog.Info("Group confirmed",
		slog.Int64("teacher_id", teacherID),
		slog.String("date", model.DateKey(date)),
		slog.String("timeslot", timeslot),
		slog.Int("size", len(confirmed)),
	)
	groupsConfirmedTotal.WithLabelValues(subject.Name).Inc()

	go s.publisher.PublishGroupConfirmed(confirmed)

	return nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID int64) error {
	canceled, err := s.bookingRepo.Cancel(ctx, bookingID)
	if err != nil {
		return err
	}
	if !canceled {
		return ErrBookingNotFound
	}

	slog.Info("Booking canceled", slog.Int64("booking_id", bookingID))

	return nil
}

func (s *bookingService) upsertCalendarEvent(ctx context.Context, details model.BookingDetails) {
	if !s.calendar.Enabled() {
		return
	}

	attendees := []string{details.StudentEmail}
	if details.TeacherEmail != nil && *details.TeacherEmail != "" {
		attendees = append(attendees, *details.TeacherEmail)
	}

	_, err := s.calendar.UpsertEvent(ctx, details.TeacherID, details.Date, details.Timeslot, details.SubjectName, details.TeacherName, attendees)
	if err != nil {
		slog.Error("Calendar upsert failed",
			slog.Int64("teacher_id", details.TeacherID),
			slog.String("error", err.Error()),
		)
	}
}

// allocateTeacher picks the teacher that receives the booking: the preferred
// one while it has room, otherwise the first of the subject's teachers (in
// insertion order) with a free seat. A nil result means every teacher is full.
func allocateTeacher(ctx context.Context, repo repository.BookingRepository, teachers []model.Teacher, preferredID int64, maxCapacity int, date time.Time, timeslot string) (*model.Teacher, error) {
	for i := range teachers {
		if teachers[i].ID != preferredID {
			continue
		}
		count, err := repo.CountActive(ctx, preferredID, date, timeslot)
		if err != nil {
			return nil, err
		}
		if count < maxCapacity {
			return &teachers[i], nil
		}
	}

	for i := range teachers {
		if teachers[i].ID == preferredID {
			continue
		}
		count, err := repo.CountActive(ctx, teachers[i].ID, date, timeslot)
		if err != nil {
			return nil, err
		}
		if count < maxCapacity {
			return &teachers[i], nil
		}
	}

	return nil, nil
}

func teacherInSubject(teachers []model.Teacher, teacherID int64) bool {
	for _, t := range teachers {
		if t.ID == teacherID {
			return true
		}
	}
	return false
}
