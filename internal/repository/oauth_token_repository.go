package repository

import (
	"booking-service/internal/model"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

type OAuthTokenRepository interface {
	FindByID(ctx context.Context, id string) (*model.OAuthToken, error)
	UpdateAccessToken(ctx context.Context, id, accessToken string, expiresAt time.Time) error
}

type postgresOAuthTokenRepository struct {
	db *sqlx.DB
}

func NewPostgresOAuthTokenRepository(db *sqlx.DB) OAuthTokenRepository {
	return &postgresOAuthTokenRepository{db: db}
}

func (r *postgresOAuthTokenRepository) FindByID(ctx context.Context, id string) (*model.OAuthToken, error) {
	var token model.OAuthToken
	query := `SELECT id, provider, access_token, refresh_token, expires_at, updated_at FROM oauth_tokens WHERE id = $1`
	err := r.db.GetContext(ctx, &token, query, id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &token, nil
}

func (r *postgresOAuthTokenRepository) UpdateAccessToken(ctx context.Context, id, accessToken string, expiresAt time.Time) error {
	query := `UPDATE oauth_tokens SET access_token = $1, expires_at = $2, updated_at = now() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, accessToken, expiresAt, id)
	return err
}
