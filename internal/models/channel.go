package models

import "time"

// Channel is a required channel users must be subscribed to. Rows are
// created and deleted only through the admin onboarding flow; the
// membership verifier enforces active channels only.
type Channel struct {
	ID         int64     `db:"id"`
	ChatID     int64     `db:"chat_id"`
	Name       string    `db:"name"`
	Link       string    `db:"link"`
	ButtonText string    `db:"button_text"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
