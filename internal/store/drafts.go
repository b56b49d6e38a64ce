package store

import (
	"database/sql"
	"errors"
)

// GetDraft retrieves the serialized draft stored under key
func (s *Store) GetDraft(key string) (string, error) {
	row := s.db.QueryRow(`SELECT value FROM drafts WHERE key = ?`, key)

	var value string
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoDraft
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// PutDraft stores or replaces the serialized draft under key
func (s *Store) PutDraft(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO drafts (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// DeleteDraft removes the draft stored under key.
// Deleting a missing draft is not an error.
func (s *Store) DeleteDraft(key string) error {
	_, err := s.db.Exec(`DELETE FROM drafts WHERE key = ?`, key)
	return err
}
