package store

import (
	"database/sql"
	"errors"
	"time"
)

// Store is the application's data access layer over SQLite
type Store struct {
	db *sql.DB
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Auth represents the stored club login tokens
type Auth struct {
	MemberDNI    string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// GetAuth retrieves the stored authentication tokens
func (s *Store) GetAuth() (*Auth, error) {
	row := s.db.QueryRow(`SELECT member_dni, access_token, refresh_token, expires_at FROM auth WHERE id = 1`)

	var a Auth
	var expiresAt int64
	err := row.Scan(&a.MemberDNI, &a.AccessToken, &a.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}
	a.ExpiresAt = time.Unix(expiresAt, 0)
	return &a, nil
}

// SaveAuth stores or replaces the authentication tokens
func (s *Store) SaveAuth(auth *Auth) error {
	_, err := s.db.Exec(`
		INSERT INTO auth (id, member_dni, access_token, refresh_token, expires_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			member_dni = excluded.member_dni,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`,
		auth.MemberDNI, auth.AccessToken, auth.RefreshToken, auth.ExpiresAt.Unix())
	return err
}

// UpdateTokens updates just the access and refresh tokens
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := s.db.Exec(`
		UPDATE auth SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`,
		accessToken, refreshToken, expiresAt.Unix())
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoAuth
	}
	return nil
}

// ClearAuth removes the stored tokens, forcing a fresh login
func (s *Store) ClearAuth() error {
	_, err := s.db.Exec(`DELETE FROM auth WHERE id = 1`)
	return err
}
