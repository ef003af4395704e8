package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upSeedCatalog, downSeedCatalog)
}

// Seeds the subject and teacher catalog. The booking core never creates
// these rows itself.
func upSeedCatalog(ctx context.Context, tx *sql.Tx) error {
	subjects := `
		INSERT INTO subjects (name, course_count, lesson_count, max_capacity) VALUES
			('Engleza', 1, 20, 12),
			('Istoria națională', 1, 20, 15),
			('Limba şi Literatura Română', 1, 25, 15),
			('Geografie', 1, 26, 15),
			('Informatica - limbajul C++', 1, 20, 12),
			('Biologia', 1, 23, 15),
			('Matematica', 4, 20, 10),
			('AI - bazele Machine Learning în Python', 1, 25, 10),
			('Curs Cambridge', 1, 25, 12);
	`

	if _, err := tx.ExecContext(ctx, subjects); err != nil {
		return err
	}

	teachers := `
		INSERT INTO teachers (subject_id, name, email) VALUES
			((SELECT id FROM subjects WHERE name = 'Engleza'), 'Gabriela Cucereavîi', 'gabiiii2018.md@gmail.com'),
			((SELECT id FROM subjects WHERE name = 'Istoria națională'), 'Daniela Voicu', 'voicudaniela16@yahoo.com'),
			((SELECT id FROM subjects WHERE name = 'Istoria națională'), 'Adriana Mocan', 'mocanadriana1@gmail.com'),
			((SELECT id FROM subjects WHERE name = 'Limba şi Literatura Română'), 'Denisa Cazan', 'biancadenisac03@yahoo.com'),
			((SELECT id FROM subjects WHERE name = 'Limba şi Literatura Română'), 'Gurban Diana', 'diana_gurban@yahoo.com'),
			((SELECT id FROM subjects WHERE name = 'Geografie'), 'Constantin Bogdan Mircea', 'bogdanbcm99@yahoo.ro'),
			((SELECT id FROM subjects WHERE name = 'Informatica - limbajul C++'), 'Ana Maria Stegărescu', 'ana.stegarescu@example.com'),
			((SELECT id FROM subjects WHERE name = 'Biologia'), 'Irina Vleju', 'i.vleju@yahoo.com'),
			((SELECT id FROM subjects WHERE name = 'Matematica'), 'Tihon Aurelian-Mihai', 'aurelian-mihai.tihon@isa.utm.md'),
			((SELECT id FROM subjects WHERE name = 'Matematica'), 'Gavril Lucian-Andrian', 'lucianadrian10@gmail.com'),
			((SELECT id FROM subjects WHERE name = 'AI - bazele Machine Learning în Python'), 'Ana Maria Stegărescu', 'ana.stegarescu+ai@example.com'),
			((SELECT id FROM subjects WHERE name = 'Curs Cambridge'), 'Denisa Cazan', 'biancadenisac03@yahoo.com');
	`

	if _, err := tx.ExecContext(ctx, teachers); err != nil {
		return err
	}

	return nil
}

func downSeedCatalog(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM teachers;`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects;`); err != nil {
		return err
	}

	return nil
}
