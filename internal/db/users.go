package db

import (
	"context"

	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// GetOrCreateUser inserts the user on first contact and refreshes the
// username on every later one.
func (s *Store) GetOrCreateUser(ctx context.Context, id int64, username, language string) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, language)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			updated_at = NOW()
		RETURNING id, username, language, subscribed, created_at, updated_at
	`
	user := &models.User{}
	if err := s.db.GetContext(ctx, user, query, id, username, language); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := s.db.GetContext(ctx, user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) SetUserLanguage(ctx context.Context, id int64, language string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET language = $1, updated_at = NOW() WHERE id = $2", language, id)
	return err
}

// SetUserSubscribed overwrites the aggregate membership flag. The
// membership verifier is the only caller.
func (s *Store) SetUserSubscribed(ctx context.Context, id int64, subscribed bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET subscribed = $1, updated_at = NOW() WHERE id = $2", subscribed, id)
	return err
}
