package model

import "time"

// OAuthToken holds provider credentials obtained by the out-of-band admin
// connect flow. The booking core only reads and refreshes them.
type OAuthToken struct {
	ID           string    `db:"id" json:"id"`
	Provider     string    `db:"provider" json:"provider"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (t *OAuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
