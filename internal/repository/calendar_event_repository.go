package repository

import (
	"booking-service/internal/model"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

type CalendarEventRepository interface {
	FindBySlot(ctx context.Context, teacherID int64, date time.Time, timeslot string) (*model.CalendarEvent, error)
	Create(ctx context.Context, event *model.CalendarEvent) error
}

type postgresCalendarEventRepository struct {
	db *sqlx.DB
}

func NewPostgresCalendarEventRepository(db *sqlx.DB) CalendarEventRepository {
	return &postgresCalendarEventRepository{db: db}
}

func (r *postgresCalendarEventRepository) FindBySlot(ctx context.Context, teacherID int64, date time.Time, timeslot string) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	query := `
		SELECT id, teacher_id, date, timeslot, external_event_id, created_at
		FROM calendar_events
		WHERE teacher_id = $1 AND date = $2 AND timeslot = $3
	`
	err := r.db.GetContext(ctx, &event, query, teacherID, date, timeslot)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &event, nil
}

func (r *postgresCalendarEventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (teacher_id, date, timeslot, external_event_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, event.TeacherID, event.Date, event.Timeslot, event.ExternalEventID)
	return row.Scan(&event.ID, &event.CreatedAt)
}
