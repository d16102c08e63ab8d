package db

import (
	"context"

	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

func (s *Store) CreateCircle(ctx context.Context, token, fileID string, userID int64) (*models.VideoCircle, error) {
	query := `
		INSERT INTO video_circles (token, file_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, token, file_id, user_id, status, channel_post_id, created_at, updated_at
	`
	circle := &models.VideoCircle{}
	if err := s.db.GetContext(ctx, circle, query, token, fileID, userID, models.StatusCreated); err != nil {
		return nil, err
	}
	return circle, nil
}

// CircleByToken matches on the stored token's prefix because callback
// payloads carry a truncated token.
func (s *Store) CircleByToken(ctx context.Context, token string) (*models.VideoCircle, error) {
	circle := &models.VideoCircle{}
	err := s.db.GetContext(ctx, circle,
		"SELECT * FROM video_circles WHERE token LIKE $1 || '%' ORDER BY created_at DESC LIMIT 1", token)
	if err != nil {
		return nil, err
	}
	return circle, nil
}

// MarkCirclePending moves a circle from created to pending. Returns false
// when the circle was not in created, leaving it untouched.
func (s *Store) MarkCirclePending(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE video_circles SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		models.StatusPending, id, models.StatusCreated)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkCirclePublished finalizes a pending circle with the channel post it
// was published as. The status guard makes racing moderators lose cleanly.
func (s *Store) MarkCirclePublished(ctx context.Context, id, channelPostID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE video_circles SET status = $1, channel_post_id = $2, updated_at = NOW() WHERE id = $3 AND status = $4",
		models.StatusPublished, channelPostID, id, models.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkCircleRejected finalizes a pending circle as rejected.
func (s *Store) MarkCircleRejected(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE video_circles SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		models.StatusRejected, id, models.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
