package repository

import (
	"booking-service/internal/model"
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type SubjectRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
}

type postgresSubjectRepository struct {
	db *sqlx.DB
}

func NewPostgresSubjectRepository(db *sqlx.DB) SubjectRepository {
	return &postgresSubjectRepository{db: db}
}

func (r *postgresSubjectRepository) FindByID(ctx context.Context, id int64) (*model.Subject, error) {
	var subject model.Subject
	query := `SELECT id, name, course_count, lesson_count, max_capacity, created_at FROM subjects WHERE id = $1`
	err := r.db.GetContext(ctx, &subject, query, id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &subject, nil
}

func (r *postgresSubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	query := `SELECT id, name, course_count, lesson_count, max_capacity, created_at FROM subjects ORDER BY id`
	err := r.db.SelectContext(ctx, &subjects, query)

	if err != nil {
		return nil, err
	}

	if subjects == nil {
		subjects = []model.Subject{}
	}

	return subjects, nil
}
