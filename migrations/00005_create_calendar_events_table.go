package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateCalendarEventsTable, downCreateCalendarEventsTable)
}

func upCreateCalendarEventsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE calendar_events (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			teacher_id BIGINT NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			timeslot TEXT NOT NULL,
			external_event_id TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			UNIQUE (teacher_id, date, timeslot)
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateCalendarEventsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS calendar_events;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
