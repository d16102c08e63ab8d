package models

import "time"

// User is a bot user keyed by their Telegram id. Subscribed holds the
// last-known aggregate membership result across all active channels; only
// the membership verifier writes it.
type User struct {
	ID         int64     `db:"id"`
	Username   string    `db:"username"`
	Language   string    `db:"language"`
	Subscribed bool      `db:"subscribed"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
