package store

import (
	"database/sql"
	"errors"
	"time"
)

// GetCache retrieves a cached backend payload and when it was fetched
func (s *Store) GetCache(key string) (string, time.Time, error) {
	row := s.db.QueryRow(`SELECT value, fetched_at FROM cache WHERE key = ?`, key)

	var value string
	var fetchedAt int64
	err := row.Scan(&value, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, ErrNoCache
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return value, time.Unix(fetchedAt, 0), nil
}

// PutCache stores or replaces a cached backend payload
func (s *Store) PutCache(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO cache (key, value, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			fetched_at = excluded.fetched_at`,
		key, value, time.Now().Unix())
	return err
}
