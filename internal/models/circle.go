package models

import "time"

// Video circle moderation states. Published and rejected are terminal; a
// circle whose owner never opts to share stays in created forever.
const (
	StatusCreated   = "created"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRejected  = "rejected"
)

// VideoCircle is a transcoded circle clip. Token is the short id embedded
// in callback payloads; FileID is the platform's opaque media handle.
// Rows are never deleted — terminal states are kept for audit.
type VideoCircle struct {
	ID            int64     `db:"id"`
	Token         string    `db:"token"`
	FileID        string    `db:"file_id"`
	UserID        int64     `db:"user_id"`
	Status        string    `db:"status"`
	ChannelPostID *int64    `db:"channel_post_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
