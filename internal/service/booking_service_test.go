package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"booking-service/internal/calendar"
	"booking-service/internal/model"
	"booking-service/internal/repository"
	"booking-service/internal/service"

	"github.com/stretchr/testify/require"
)

// In-memory store shared by the fake repositories. The slot lock maps to a
// single mutex, which matches the serialization the Postgres advisory lock
// provides per slot key.
type fakeStore struct {
	mu sync.Mutex

	subjects map[int64]model.Subject
	teachers []model.Teacher
	students map[string]model.Student
	bookings map[int64]model.Booking

	nextStudentID int64
	nextBookingID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subjects: map[int64]model.Subject{},
		students: map[string]model.Student{},
		bookings: map[int64]model.Booking{},
	}
}

func (s *fakeStore) addSubject(id int64, name string, maxCapacity int) {
	s.subjects[id] = model.Subject{ID: id, Name: name, MaxCapacity: maxCapacity}
}

func (s *fakeStore) addTeacher(id, subjectID int64, name string) {
	email := fmt.Sprintf("teacher%d@example.com", id)
	s.teachers = append(s.teachers, model.Teacher{ID: id, SubjectID: subjectID, Name: name, Email: &email})
}

func (s *fakeStore) countLocked(teacherID int64, date time.Time, timeslot string, match func(model.BookingStatus) bool) int {
	count := 0
	for _, b := range s.bookings {
		if b.TeacherID == teacherID && model.DateKey(b.Date) == model.DateKey(date) && b.Timeslot == timeslot && match(b.Status) {
			count++
		}
	}
	return count
}

type fakeSubjectRepo struct{ store *fakeStore }

func (r *fakeSubjectRepo) FindByID(_ context.Context, id int64) (*model.Subject, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.subjects[id]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (r *fakeSubjectRepo) List(context.Context) ([]model.Subject, error) {
	return nil, errors.New("not implemented")
}

type fakeTeacherRepo struct{ store *fakeStore }

func (r *fakeTeacherRepo) FindByID(_ context.Context, id int64) (*model.Teacher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.teachers {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeTeacherRepo) ListBySubject(_ context.Context, subjectID int64) ([]model.Teacher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var teachers []model.Teacher
	for _, t := range r.store.teachers {
		if t.SubjectID == subjectID {
			teachers = append(teachers, t)
		}
	}
	return teachers, nil
}

func (r *fakeTeacherRepo) List(context.Context) ([]model.Teacher, error) {
	return nil, errors.New("not implemented")
}

// fakeBookingRepo locks the store per critical section; the repository handed
// to the WithSlotLock callback operates on the already-locked store.
type fakeBookingRepo struct {
	store  *fakeStore
	locked bool
}

func (r *fakeBookingRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *fakeBookingRepo) WithSlotLock(_ context.Context, _ int64, _ time.Time, _ string, fn func(repository.BookingRepository) error) error {
	if r.locked {
		return errors.New("nested slot lock")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(&fakeBookingRepo{store: r.store, locked: true})
}

func (r *fakeBookingRepo) CountActive(_ context.Context, teacherID int64, date time.Time, timeslot string) (int, error) {
	defer r.lock()()
	return r.store.countLocked(teacherID, date, timeslot, func(s model.BookingStatus) bool {
		return s != model.BookingStatusCanceled
	}), nil
}

func (r *fakeBookingRepo) CountPending(_ context.Context, teacherID int64, date time.Time, timeslot string) (int, error) {
	defer r.lock()()
	return r.store.countLocked(teacherID, date, timeslot, func(s model.BookingStatus) bool {
		return s == model.BookingStatusPending
	}), nil
}

func (r *fakeBookingRepo) UpsertStudent(_ context.Context, student *model.Student) error {
	defer r.lock()()
	if existing, ok := r.store.students[student.Email]; ok {
		*student = existing
		return nil
	}
	r.store.nextStudentID++
	student.ID = r.store.nextStudentID
	r.store.students[student.Email] = *student
	return nil
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	defer r.lock()()
	r.store.nextBookingID++
	booking.ID = r.store.nextBookingID
	booking.CreatedAt = time.Now()
	r.store.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) ListPendingDetails(_ context.Context, teacherID int64, date time.Time, timeslot string) ([]model.BookingDetails, error) {
	defer r.lock()()
	var details []model.BookingDetails
	for id := int64(1); id <= r.store.nextBookingID; id++ {
		b, ok := r.store.bookings[id]
		if !ok || b.TeacherID != teacherID || model.DateKey(b.Date) != model.DateKey(date) || b.Timeslot != timeslot || b.Status != model.BookingStatusPending {
			continue
		}

		var teacher model.Teacher
		for _, t := range r.store.teachers {
			if t.ID == b.TeacherID {
				teacher = t
			}
		}
		var student model.Student
		for _, st := range r.store.students {
			if st.ID == b.StudentID {
				student = st
			}
		}
		subject := r.store.subjects[b.SubjectID]

		details = append(details, model.BookingDetails{
			ID:           b.ID,
			Date:         b.Date,
			Timeslot:     b.Timeslot,
			SubjectID:    subject.ID,
			SubjectName:  subject.Name,
			TeacherID:    teacher.ID,
			TeacherName:  teacher.Name,
			TeacherEmail: teacher.Email,
			StudentID:    student.ID,
			StudentName:  student.Name,
			StudentEmail: student.Email,
			StudentPhone: student.Phone,
		})
	}
	return details, nil
}

func (r *fakeBookingRepo) ConfirmByIDs(_ context.Context, ids []int64) error {
	defer r.lock()()
	for _, id := range ids {
		b := r.store.bookings[id]
		if b.Status != model.BookingStatusPending {
			continue
		}
		b.Status = model.BookingStatusConfirmed
		r.store.bookings[id] = b
	}
	return nil
}

func (r *fakeBookingRepo) Cancel(_ context.Context, id int64) (bool, error) {
	defer r.lock()()
	b, ok := r.store.bookings[id]
	if !ok || b.Status != model.BookingStatusPending {
		return false, nil
	}
	b.Status = model.BookingStatusCanceled
	r.store.bookings[id] = b
	return true, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	pending   []bool // switched flags, in order
	confirmed [][]model.BookingDetails
}

func (p *fakePublisher) PublishBookingPending(_ model.BookingDetails, switched bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, switched)
	return nil
}

func (p *fakePublisher) PublishGroupConfirmed(bookings []model.BookingDetails) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, bookings)
	return nil
}

func (p *fakePublisher) confirmedGroups() [][]model.BookingDetails {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]model.BookingDetails(nil), p.confirmed...)
}

func (p *fakePublisher) pendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func newService(store *fakeStore) (service.BookingService, *fakePublisher) {
	publisher := &fakePublisher{}
	svc := service.NewBookingService(
		&fakeSubjectRepo{store: store},
		&fakeTeacherRepo{store: store},
		&fakeBookingRepo{store: store},
		publisher,
		calendar.NewManager(nil, nil),
	)
	return svc, publisher
}

func submitInput(subjectID, teacherID int64, email string) service.SubmitBookingInput {
	return service.SubmitBookingInput{
		SubjectID:    subjectID,
		TeacherID:    teacherID,
		Date:         time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		Timeslot:     "16:00 - 17:30",
		StudentName:  "Student " + email,
		StudentEmail: email,
	}
}

func TestSubmitBooking_CreatesPending(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Matematica", 3)
	store.addTeacher(10, 1, "Tihon Aurelian-Mihai")
	svc, publisher := newService(store)

	result, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)
	require.False(t, result.Switched)
	require.Equal(t, model.BookingStatusPending, result.Booking.Status)
	require.Equal(t, int64(10), result.Booking.TeacherID)

	require.Eventually(t, func() bool { return publisher.pendingCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSubmitBooking_SubjectNotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	_, err := svc.SubmitBooking(context.Background(), submitInput(99, 10, "a@example.com"))
	require.ErrorIs(t, err, service.ErrSubjectNotFound)
}

func TestSubmitBooking_TeacherNotInSubject(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Matematica", 3)
	store.addSubject(2, "Biologia", 3)
	store.addTeacher(10, 1, "Tihon Aurelian-Mihai")
	store.addTeacher(20, 2, "Irina Vleju")
	svc, _ := newService(store)

	_, err := svc.SubmitBooking(context.Background(), submitInput(1, 20, "a@example.com"))
	require.ErrorIs(t, err, service.ErrTeacherNotFound)
}

func TestSubmitBooking_ReusesStudentByEmail(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Matematica", 5)
	store.addTeacher(10, 1, "Tihon Aurelian-Mihai")
	svc, _ := newService(store)

	first, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)

	input := submitInput(1, 10, "a@example.com")
	input.StudentName = "Different Name"
	input.Timeslot = "17:45 - 19:15"
	second, err := svc.SubmitBooking(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, first.Booking.StudentID, second.Booking.StudentID)
	// the stored name is not overwritten by a repeat booking
	require.Equal(t, first.Details.StudentName, second.Details.StudentName)
}

func TestSubmitBooking_SwitchesWhenPreferredFull(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Istoria națională", 1)
	store.addTeacher(10, 1, "Daniela Voicu")
	store.addTeacher(11, 1, "Adriana Mocan")
	svc, _ := newService(store)

	first, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)
	require.False(t, first.Switched)

	second, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "b@example.com"))
	require.NoError(t, err)
	require.True(t, second.Switched)
	require.Equal(t, int64(11), second.Booking.TeacherID)
}

func TestSubmitBooking_NoCapacity(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Istoria națională", 1)
	store.addTeacher(10, 1, "Daniela Voicu")
	store.addTeacher(11, 1, "Adriana Mocan")
	svc, _ := newService(store)

	_, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)
	_, err = svc.SubmitBooking(context.Background(), submitInput(1, 11, "b@example.com"))
	require.NoError(t, err)

	_, err = svc.SubmitBooking(context.Background(), submitInput(1, 10, "c@example.com"))
	require.ErrorIs(t, err, service.ErrNoCapacity)

	// nothing beyond the two seats was written
	require.Len(t, store.bookings, 2)
}

func TestGroupConfirmation_ExampleScenario(t *testing.T) {
	// Subject with capacity 2, two teachers: A and B fill teacher 10 and
	// confirm; C is redirected to teacher 11 and stays pending.
	store := newFakeStore()
	store.addSubject(1, "Limba şi Literatura Română", 2)
	store.addTeacher(10, 1, "Denisa Cazan")
	store.addTeacher(11, 1, "Gurban Diana")
	svc, publisher := newService(store)

	a, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)
	b, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "b@example.com"))
	require.NoError(t, err)

	store.mu.Lock()
	require.Equal(t, model.BookingStatusConfirmed, store.bookings[a.Booking.ID].Status)
	require.Equal(t, model.BookingStatusConfirmed, store.bookings[b.Booking.ID].Status)
	store.mu.Unlock()

	require.Eventually(t, func() bool { return len(publisher.confirmedGroups()) == 1 }, time.Second, 10*time.Millisecond)
	group := publisher.confirmedGroups()[0]
	require.Len(t, group, 2)

	c, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "c@example.com"))
	require.NoError(t, err)
	require.True(t, c.Switched)
	require.Equal(t, int64(11), c.Booking.TeacherID)

	store.mu.Lock()
	require.Equal(t, model.BookingStatusPending, store.bookings[c.Booking.ID].Status)
	store.mu.Unlock()
}

func TestGroupConfirmation_OtherSlotUnaffected(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Matematica", 2)
	store.addTeacher(10, 1, "Tihon Aurelian-Mihai")
	svc, _ := newService(store)

	other := submitInput(1, 10, "other@example.com")
	other.Timeslot = "19:30 - 21:00"
	otherResult, err := svc.SubmitBooking(context.Background(), other)
	require.NoError(t, err)

	_, err = svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)
	_, err = svc.SubmitBooking(context.Background(), submitInput(1, 10, "b@example.com"))
	require.NoError(t, err)

	store.mu.Lock()
	require.Equal(t, model.BookingStatusPending, store.bookings[otherResult.Booking.ID].Status)
	store.mu.Unlock()
}

func TestTryConfirmGroup_BelowCapacityIsNoop(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Matematica", 3)
	store.addTeacher(10, 1, "Tihon Aurelian-Mihai")
	svc, publisher := newService(store)

	result, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)

	err = svc.TryConfirmGroup(context.Background(), 10, result.Booking.Date, result.Booking.Timeslot)
	require.NoError(t, err)

	store.mu.Lock()
	require.Equal(t, model.BookingStatusPending, store.bookings[result.Booking.ID].Status)
	store.mu.Unlock()
	require.Empty(t, publisher.confirmedGroups())
}

func TestTryConfirmGroup_UnknownTeacher(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	err := svc.TryConfirmGroup(context.Background(), 99, time.Now(), "16:00 - 17:30")
	require.ErrorIs(t, err, service.ErrTeacherNotFound)
}

func TestCancelBooking_FreesCapacity(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Istoria națională", 2)
	store.addTeacher(10, 1, "Daniela Voicu")
	svc, _ := newService(store)

	first, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(context.Background(), first.Booking.ID))

	// the freed seat admits two fresh students
	_, err = svc.SubmitBooking(context.Background(), submitInput(1, 10, "b@example.com"))
	require.NoError(t, err)
	second, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "c@example.com"))
	require.NoError(t, err)
	require.False(t, second.Switched)
}

func TestCancelBooking_ConfirmedIsTerminal(t *testing.T) {
	store := newFakeStore()
	store.addSubject(1, "Istoria națională", 2)
	store.addTeacher(10, 1, "Daniela Voicu")
	svc, _ := newService(store)

	a, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, "a@example.com"))
	require.NoError(t, err)
	_, err = svc.SubmitBooking(context.Background(), submitInput(1, 10, "b@example.com"))
	require.NoError(t, err)

	store.mu.Lock()
	require.Equal(t, model.BookingStatusConfirmed, store.bookings[a.Booking.ID].Status)
	store.mu.Unlock()

	err = svc.CancelBooking(context.Background(), a.Booking.ID)
	require.ErrorIs(t, err, service.ErrBookingNotFound)

	store.mu.Lock()
	require.Equal(t, model.BookingStatusConfirmed, store.bookings[a.Booking.ID].Status)
	store.mu.Unlock()
}

func TestCancelBooking_NotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	err := svc.CancelBooking(context.Background(), 99)
	require.ErrorIs(t, err, service.ErrBookingNotFound)
}

// Fires many concurrent submissions at a single slot and checks the capacity
// invariant: exactly maxCapacity bookings land on the teacher, the rest are
// rejected.
func TestSubmitBooking_ConcurrentNeverOvershootsCapacity(t *testing.T) {
	const (
		maxCapacity = 3
		attempts    = 20
	)

	store := newFakeStore()
	store.addSubject(1, "Matematica", maxCapacity)
	store.addTeacher(10, 1, "Tihon Aurelian-Mihai")
	svc, _ := newService(store)

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SubmitBooking(context.Background(), submitInput(1, 10, fmt.Sprintf("s%d@example.com", i)))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrNoCapacity):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	require.Equal(t, maxCapacity, succeeded)
	require.Equal(t, attempts-maxCapacity, rejected)

	store.mu.Lock()
	defer store.mu.Unlock()
	active := 0
	for _, b := range store.bookings {
		if b.Status != model.BookingStatusCanceled {
			require.Equal(t, int64(10), b.TeacherID)
			active++
		}
	}
	require.Equal(t, maxCapacity, active)
}
