package refstore

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// fakeDurable keeps circles in a map and does the same prefix matching the
// SQL store does.
type fakeDurable struct {
	circles map[string]*models.VideoCircle
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{circles: make(map[string]*models.VideoCircle)}
}

func (f *fakeDurable) CreateCircle(ctx context.Context, token, fileID string, userID int64) (*models.VideoCircle, error) {
	c := &models.VideoCircle{Token: token, FileID: fileID, UserID: userID, Status: models.StatusCreated}
	f.circles[token] = c
	return c, nil
}

func (f *fakeDurable) CircleByToken(ctx context.Context, token string) (*models.VideoCircle, error) {
	for full, c := range f.circles {
		if strings.HasPrefix(full, token) {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newTestStore() (*Store, cache.Cache, *fakeDurable) {
	c := cache.NewMemory()
	d := newFakeDurable()
	return New(c, d, 8, 24*time.Hour, zerolog.Nop()), c, d
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()

	token, err := s.Put(ctx, "BAACAgIAAxkDAAIC", 42)
	require.NoError(t, err)
	assert.Len(t, token, 8)

	fileID, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "BAACAgIAAxkDAAIC", fileID)
}

func TestGetFallsBackToDurable(t *testing.T) {
	s, c, _ := newTestStore()
	ctx := context.Background()

	token, err := s.Put(ctx, "file-handle", 42)
	require.NoError(t, err)

	// Simulate fast-cache eviction.
	require.NoError(t, c.Del(ctx, keyPrefix+token))

	fileID, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "file-handle", fileID)

	// The durable hit repopulated the cache.
	cached, err := c.Get(ctx, keyPrefix+token)
	require.NoError(t, err)
	assert.Equal(t, "file-handle", cached)
}

func TestGetTruncatedToken(t *testing.T) {
	s, c, _ := newTestStore()
	ctx := context.Background()

	token, err := s.Put(ctx, "file-handle", 42)
	require.NoError(t, err)
	require.NoError(t, c.Del(ctx, keyPrefix+token))

	// Callback payloads carry 6 of the 8 characters.
	fileID, err := s.Get(ctx, token[:6])
	require.NoError(t, err)
	assert.Equal(t, "file-handle", fileID)
}

func TestGetUnknownToken(t *testing.T) {
	s, _, _ := newTestStore()

	_, err := s.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenUniqueness(t *testing.T) {
	s, _, _ := newTestStore()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token := s.newToken()
		_, dup := seen[token]
		require.False(t, dup, "token collision after %d tokens: %s", i, token)
		seen[token] = struct{}{}
	}
}
