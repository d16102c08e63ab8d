package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the bot, worker and scheduler processes need.
// Values are read from the environment once at startup; components receive
// the struct (or the fields they need) explicitly.
type Config struct {
	BotToken    string
	DatabaseURL string
	RedisAddr   string

	// ModeratorIDs is the allow-list of operator ids permitted to use the
	// admin surface and to publish/reject submitted circles.
	ModeratorIDs []int64

	// PublishChannelID is the channel published circles are forwarded to.
	PublishChannelID int64

	TempDir           string
	MaxVideoDuration  int           // seconds
	TargetSide        int           // output side length cap, px
	TokenLength       int           // stored token length
	CallbackTokenLen  int           // token length inside callback payloads
	CacheTTL          time.Duration // fast-cache entry lifetime
	WorkerConcurrency int

	HealthAddr string
}

// Load reads the configuration from the environment. BOT_TOKEN and
// DATABASE_URL are required; everything else has a sensible default.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:          os.Getenv("BOT_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         envOr("REDIS_ADDR", "127.0.0.1:6379"),
		TempDir:           envOr("TEMP_DIR", "temp"),
		MaxVideoDuration:  60,
		TargetSide:        640,
		TokenLength:       8,
		CallbackTokenLen:  6,
		CacheTTL:          24 * time.Hour,
		WorkerConcurrency: 4,
		HealthAddr:        envOr("HEALTH_ADDR", ":8080"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	ids, err := parseIDList(os.Getenv("MODERATOR_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse MODERATOR_IDS: %w", err)
	}
	cfg.ModeratorIDs = ids

	if v := os.Getenv("PUBLISH_CHANNEL_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse PUBLISH_CHANNEL_ID: %w", err)
		}
		cfg.PublishChannelID = id
	}

	return cfg, nil
}

// IsModerator reports whether id is on the moderator allow-list.
func (c *Config) IsModerator(id int64) bool {
	for _, m := range c.ModeratorIDs {
		if m == id {
			return true
		}
	}
	return false
}

func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
