package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSubjectsTable, downCreateSubjectsTable)
}

func upCreateSubjectsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE subjects (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL,
			course_count INT NOT NULL DEFAULT 1,
			lesson_count INT NOT NULL DEFAULT 0,
			max_capacity INT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSubjectsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS subjects;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
