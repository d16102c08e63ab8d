package models

import "time"

// Subscription records the last observed membership of one user in one
// channel. At most one row exists per (user, channel) pair; the value is as
// fresh as the last triggered check.
type Subscription struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	ChannelID  int64     `db:"channel_id"`
	Subscribed bool      `db:"subscribed"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
