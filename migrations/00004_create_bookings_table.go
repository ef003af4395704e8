package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateBookingsTable, downCreateBookingsTable)
}

func upCreateBookingsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE bookings (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			subject_id BIGINT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			teacher_id BIGINT NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			timeslot TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX idx_bookings_slot ON bookings (teacher_id, date, timeslot);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateBookingsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS bookings;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
