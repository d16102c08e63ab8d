package db

import (
	"context"

	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// ActiveChannels returns the channels membership is enforced against.
func (s *Store) ActiveChannels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := s.db.SelectContext(ctx, &channels,
		"SELECT * FROM channels WHERE is_active = TRUE ORDER BY created_at")
	return channels, err
}

func (s *Store) AllChannels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := s.db.SelectContext(ctx, &channels, "SELECT * FROM channels ORDER BY created_at")
	return channels, err
}

func (s *Store) CreateChannel(ctx context.Context, chatID int64, name, link, buttonText string) (*models.Channel, error) {
	query := `
		INSERT INTO channels (chat_id, name, link, button_text, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, chat_id, name, link, button_text, is_active, created_at, updated_at
	`
	channel := &models.Channel{}
	if err := s.db.GetContext(ctx, channel, query, chatID, name, link, buttonText); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *Store) DeleteChannel(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM channels WHERE id = $1", id)
	return err
}
