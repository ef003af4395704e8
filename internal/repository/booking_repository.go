package repository

import (
	"booking-service/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// queryer is the subset of sqlx satisfied by both *sqlx.DB and *sqlx.Tx, so
// repository methods run unchanged inside and outside a transaction.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type BookingRepository interface {
	CountActive(ctx context.Context, teacherID int64, date time.Time, timeslot string) (int, error)
	CountPending(ctx context.Context, teacherID int64, date time.Time, timeslot string) (int, error)
	UpsertStudent(ctx context.Context, student *model.Student) error
	Create(ctx context.Context, booking *model.Booking) error
	ListPendingDetails(ctx context.Context, teacherID int64, date time.Time, timeslot string) ([]model.BookingDetails, error)
	ConfirmByIDs(ctx context.Context, ids []int64) error
	Cancel(ctx context.Context, id int64) (bool, error)

	// WithSlotLock runs fn inside a transaction holding an advisory lock on
	// the (subject, date, timeslot) key. All allocation and confirmation
	// decisions for any teacher of that subject at that slot serialize on it,
	// which closes the check-then-act race between the capacity count and the
	// booking insert. The repository passed to fn is bound to the transaction.
	WithSlotLock(ctx context.Context, subjectID int64, date time.Time, timeslot string, fn func(BookingRepository) error) error
}

type postgresBookingRepository struct {
	db *sqlx.DB
	q  queryer
}

func NewPostgresBookingRepository(db *sqlx.DB) BookingRepository {
	return &postgresBookingRepository{db: db, q: db}
}

func (r *postgresBookingRepository) WithSlotLock(ctx context.Context, subjectID int64, date time.Time, timeslot string, fn func(BookingRepository) error) error {
	if r.db == nil {
		return fmt.Errorf("slot lock: already inside a transaction")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	key := fmt.Sprintf("slot:%d:%s:%s", subjectID, model.DateKey(date), timeslot)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}

	if err := fn(&postgresBookingRepository{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *postgresBookingRepository) countByStatus(ctx context.Context, teacherID int64, date time.Time, timeslot string, clause string, args ...interface{}) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE teacher_id = $1 AND date = $2 AND timeslot = $3 AND ` + clause
	err := r.q.GetContext(ctx, &count, query, append([]interface{}{teacherID, date, timeslot}, args...)...)

	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountActive counts the bookings that occupy capacity in the slot, i.e.
// everything not canceled.
func (r *postgresBookingRepository) CountActive(ctx context.Context, teacherID int64, date time.Time, timeslot string) (int, error) {
	return r.countByStatus(ctx, teacherID, date, timeslot, `status <> $4`, model.BookingStatusCanceled)
}

func (r *postgresBookingRepository) CountPending(ctx context.Context, teacherID int64, date time.Time, timeslot string) (int, error) {
	return r.countByStatus(ctx, teacherID, date, timeslot, `status = $4`, model.BookingStatusPending)
}

// UpsertStudent inserts the student or, when the email already exists, loads
// the existing row. Name and phone of a returning student are deliberately
// not overwritten; the scanned-back values reflect what is stored.
func (r *postgresBookingRepository) UpsertStudent(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (name, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, name, phone, created_at
	`

	row := r.q.QueryRowxContext(ctx, query, student.Name, student.Email, student.Phone)
	if err := row.Scan(&student.ID, &student.Name, &student.Phone, &student.CreatedAt); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}

	return nil
}

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (subject_id, teacher_id, student_id, date, timeslot, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	row := r.q.QueryRowxContext(ctx, query,
		booking.SubjectID,
		booking.TeacherID,
		booking.StudentID,
		booking.Date,
		booking.Timeslot,
		booking.Status,
	)
	if err := row.Scan(&booking.ID, &booking.CreatedAt); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

func (r *postgresBookingRepository) ListPendingDetails(ctx context.Context, teacherID int64, date time.Time, timeslot string) ([]model.BookingDetails, error) {
	var bookings []model.BookingDetails
	query := `
		SELECT
			b.id, b.date, b.timeslot,
			sub.id AS subject_id, sub.name AS subject_name,
			t.id AS teacher_id, t.name AS teacher_name, t.email AS teacher_email,
			st.id AS student_id, st.name AS student_name, st.email AS student_email, st.phone AS student_phone
		FROM bookings b
		JOIN subjects sub ON b.subject_id = sub.id
		JOIN teachers t ON b.teacher_id = t.id
		JOIN students st ON b.student_id = st.id
		WHERE b.teacher_id = $1 AND b.date = $2 AND b.timeslot = $3 AND b.status = $4
		ORDER BY b.id
	`
	err := r.q.SelectContext(ctx, &bookings, query, teacherID, date, timeslot, model.BookingStatusPending)

	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// ConfirmByIDs promotes the given bookings in one statement. Only rows still
// PENDING are touched, so a booking canceled after the caller listed it stays
// canceled.
func (r *postgresBookingRepository) ConfirmByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE bookings SET status = ? WHERE status = ? AND id IN (?)`, model.BookingStatusConfirmed, model.BookingStatusPending, ids)
	if err != nil {
		return fmt.Errorf("confirm bookings: %w", err)
	}

	query = r.q.Rebind(query)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("confirm bookings: %w", err)
	}

	return nil
}

// Cancel marks a pending booking canceled, freeing its capacity. CONFIRMED
// and CANCELED are terminal, so returns false when the booking does not exist
// or already left PENDING.
func (r *postgresBookingRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.q.ExecContext(ctx, query, model.BookingStatusCanceled, id, model.BookingStatusPending)

	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
