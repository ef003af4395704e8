package repository

import (
	"booking-service/internal/model"
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type TeacherRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Teacher, error)
	ListBySubject(ctx context.Context, subjectID int64) ([]model.Teacher, error)
	List(ctx context.Context) ([]model.Teacher, error)
}

type postgresTeacherRepository struct {
	db *sqlx.DB
}

func NewPostgresTeacherRepository(db *sqlx.DB) TeacherRepository {
	return &postgresTeacherRepository{db: db}
}

func (r *postgresTeacherRepository) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	var teacher model.Teacher
	query := `SELECT id, subject_id, name, email, created_at FROM teachers WHERE id = $1`
	err := r.db.GetContext(ctx, &teacher, query, id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &teacher, nil
}

// ListBySubject returns the subject's teachers in insertion order, which is
// also the order the allocator falls back through.
func (r *postgresTeacherRepository) ListBySubject(ctx context.Context, subjectID int64) ([]model.Teacher, error) {
	var teachers []model.Teacher
	query := `SELECT id, subject_id, name, email, created_at FROM teachers WHERE subject_id = $1 ORDER BY id`
	err := r.db.SelectContext(ctx, &teachers, query, subjectID)

	if err != nil {
		return nil, err
	}

	if teachers == nil {
		teachers = []model.Teacher{}
	}

	return teachers, nil
}

func (r *postgresTeacherRepository) List(ctx context.Context) ([]model.Teacher, error) {
	var teachers []model.Teacher
	query := `SELECT id, subject_id, name, email, created_at FROM teachers ORDER BY id`
	err := r.db.SelectContext(ctx, &teachers, query)

	if err != nil {
		return nil, err
	}

	if teachers == nil {
		teachers = []model.Teacher{}
	}

	return teachers, nil
}
