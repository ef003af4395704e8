package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"booking-service/internal/model"
	repo "booking-service/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newBookingRepo(t *testing.T) (repo.BookingRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	// bind as pgx so Rebind resolves to $ placeholders, as in production
	sqlxDB := sqlx.NewDb(db, "pgx")
	return repo.NewPostgresBookingRepository(sqlxDB), mock, func() { db.Close() }
}

func TestPostgresBookingRepository_CountActive(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	date := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE teacher_id = $1 AND date = $2 AND timeslot = $3 AND status <> $4`)).
		WithArgs(int64(7), date, "16:00 - 17:30", model.BookingStatusCanceled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := r.CountActive(context.Background(), 7, date, "16:00 - 17:30")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_UpsertStudent_KeepsExistingFields(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	// repeat booking with a different name: the stored name wins
	phone := "060000000"
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO students (name, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, name, phone, created_at
	`)).WithArgs("New Name", "ana@example.com", phone).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "created_at"}).AddRow(int64(4), "Ana Pop", "069999999", now))

	student := &model.Student{Name: "New Name", Email: "ana@example.com", Phone: &phone}
	err := r.UpsertStudent(context.Background(), student)
	require.NoError(t, err)
	require.Equal(t, int64(4), student.ID)
	require.Equal(t, "Ana Pop", student.Name)
	require.Equal(t, "069999999", *student.Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_Create(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	date := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO bookings (subject_id, teacher_id, student_id, date, timeslot, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`)).WithArgs(int64(1), int64(7), int64(4), date, "16:00 - 17:30", model.BookingStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

	booking := &model.Booking{
		SubjectID: 1,
		TeacherID: 7,
		StudentID: 4,
		Date:      date,
		Timeslot:  "16:00 - 17:30",
		Status:    model.BookingStatusPending,
	}
	err := r.Create(context.Background(), booking)
	require.NoError(t, err)
	require.Equal(t, int64(11), booking.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_ConfirmByIDs(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	// the status filter keeps a booking canceled mid-flight out of the update
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1 WHERE status = $2 AND id IN ($3, $4)`)).
		WithArgs(model.BookingStatusConfirmed, model.BookingStatusPending, int64(11), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := r.ConfirmByIDs(context.Background(), []int64{11, 12})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_ConfirmByIDs_Empty(t *testing.T) {
	r, _, closeDB := newBookingRepo(t)
	defer closeDB()

	require.NoError(t, r.ConfirmByIDs(context.Background(), nil))
}

func TestPostgresBookingRepository_Cancel(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`)).
		WithArgs(model.BookingStatusCanceled, int64(11), model.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	canceled, err := r.Cancel(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, canceled)

	// unknown id, or a booking already CONFIRMED or CANCELED: no row matches
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`)).
		WithArgs(model.BookingStatusCanceled, int64(99), model.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	canceled, err = r.Cancel(context.Background(), 99)
	require.NoError(t, err)
	require.False(t, canceled)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_WithSlotLock(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	date := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`)).
		WithArgs("slot:1:2026-10-05:16:00 - 17:30").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE teacher_id = $1 AND date = $2 AND timeslot = $3 AND status <> $4`)).
		WithArgs(int64(7), date, "16:00 - 17:30", model.BookingStatusCanceled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	err := r.WithSlotLock(context.Background(), 1, date, "16:00 - 17:30", func(txRepo repo.BookingRepository) error {
		count, err := txRepo.CountActive(context.Background(), 7, date, "16:00 - 17:30")
		require.NoError(t, err)
		require.Equal(t, 0, count)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_WithSlotLock_RollsBackOnError(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	date := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`)).
		WithArgs("slot:1:2026-10-05:16:00 - 17:30").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	wantErr := context.DeadlineExceeded
	err := r.WithSlotLock(context.Background(), 1, date, "16:00 - 17:30", func(repo.BookingRepository) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_ListPendingDetails(t *testing.T) {
	r, mock, closeDB := newBookingRepo(t)
	defer closeDB()

	date := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "date", "timeslot",
		"subject_id", "subject_name",
		"teacher_id", "teacher_name", "teacher_email",
		"student_id", "student_name", "student_email", "student_phone",
	}).
		AddRow(int64(11), date, "16:00 - 17:30", int64(1), "Matematica", int64(7), "Tihon Aurelian-Mihai", "t@example.com", int64(4), "Ana Pop", "ana@example.com", nil).
		AddRow(int64(12), date, "16:00 - 17:30", int64(1), "Matematica", int64(7), "Tihon Aurelian-Mihai", "t@example.com", int64(5), "Ion Rusu", "ion@example.com", "060000000")

	mock.ExpectQuery(`SELECT\s+b\.id, b\.date, b\.timeslot,`).
		WithArgs(int64(7), date, "16:00 - 17:30", model.BookingStatusPending).
		WillReturnRows(rows)

	bookings, err := r.ListPendingDetails(context.Background(), 7, date, "16:00 - 17:30")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.Equal(t, "Ana Pop", bookings[0].StudentName)
	require.Nil(t, bookings[0].StudentPhone)
	require.Equal(t, "060000000", *bookings[1].StudentPhone)
	require.NoError(t, mock.ExpectationsWereMet())
}
