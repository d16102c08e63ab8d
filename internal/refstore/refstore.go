package refstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// ErrNotFound is returned when a token maps to nothing in either tier.
var ErrNotFound = errors.New("refstore: token not found")

const keyPrefix = "file_id:"

// Durable is the persistent side of the store. Rows are kept forever so
// moderation outcomes stay auditable after the cache entry expires.
type Durable interface {
	CreateCircle(ctx context.Context, token, fileID string, userID int64) (*models.VideoCircle, error)
	CircleByToken(ctx context.Context, token string) (*models.VideoCircle, error)
}

// Store maps short opaque tokens to the platform's large media handles.
// Reads hit the fast cache first and repopulate it from the durable store
// on a miss.
type Store struct {
	cache    cache.Cache
	durable  Durable
	tokenLen int
	ttl      time.Duration
	log      zerolog.Logger
}

func New(c cache.Cache, d Durable, tokenLen int, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{cache: c, durable: d, tokenLen: tokenLen, ttl: ttl, log: log}
}

// Put registers a media handle and returns its short token. The durable
// row is written first; a cache write failure only costs the fast path.
func (s *Store) Put(ctx context.Context, fileID string, userID int64) (string, error) {
	token := s.newToken()

	if _, err := s.durable.CreateCircle(ctx, token, fileID, userID); err != nil {
		return "", fmt.Errorf("persist token mapping: %w", err)
	}

	if err := s.cache.Set(ctx, keyPrefix+token, fileID, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("token", token).Msg("cache write failed, durable row exists")
	}

	return token, nil
}

// Get resolves a token (full or truncated) to its media handle.
func (s *Store) Get(ctx context.Context, token string) (string, error) {
	fileID, err := s.cache.Get(ctx, keyPrefix+token)
	if err == nil {
		return fileID, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("token", token).Msg("cache read failed, falling back to durable store")
	}

	circle, err := s.durable.CircleByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("durable lookup: %w", err)
	}

	// Write-through on read so the next lookup stays on the fast path.
	if err := s.cache.Set(ctx, keyPrefix+token, circle.FileID, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("token", token).Msg("cache repopulate failed")
	}

	return circle.FileID, nil
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newToken draws tokenLen base-36 characters from uuid randomness. At 8
// characters the space is ~2.8e12, far beyond expected volume.
func (s *Store) newToken() string {
	u := uuid.New()
	b := make([]byte, s.tokenLen)
	for i := range b {
		b[i] = tokenAlphabet[int(u[i%len(u)])%len(tokenAlphabet)]
	}
	return string(b)
}
