package store

import (
	"database/sql"
)

// NewTestStore creates a Store for testing, running migrations against the
// given database (typically an in-memory SQLite connection).
// This is only intended for use in tests.
func NewTestStore(sqlDB *sql.DB) (*Store, error) {
	if err := migrate(sqlDB); err != nil {
		return nil, err
	}
	return &Store{db: sqlDB}, nil
}
