package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTeachersTable, downCreateTeachersTable)
}

func upCreateTeachersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE teachers (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			subject_id BIGINT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			email TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateTeachersTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS teachers;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
