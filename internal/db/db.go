package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
)

// Store wraps the durable Postgres store. All methods take a context and
// return plain errors; not-found is surfaced as sql.ErrNoRows from sqlx.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	conn, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &Store{db: conn}, nil
}

// NewStore wraps an existing connection. Used by tests with sqlmock.
func NewStore(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}

// Ping checks database liveness.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
