package db

import "context"

// UpsertSubscription records the observed membership of a user in a
// channel. The unique (user_id, channel_id) constraint keeps one row per
// pair; the database's atomic upsert is the only locking relied on.
func (s *Store) UpsertSubscription(ctx context.Context, userID, channelID int64, subscribed bool) error {
	query := `
		INSERT INTO user_subscriptions (user_id, channel_id, subscribed)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, channel_id) DO UPDATE SET
			subscribed = EXCLUDED.subscribed,
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, userID, channelID, subscribed)
	return err
}
