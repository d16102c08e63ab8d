package main

import (
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/config"
	"github.com/maxkolot/telegram-subscription-bot/internal/db"
	"github.com/maxkolot/telegram-subscription-bot/internal/logging"
	"github.com/maxkolot/telegram-subscription-bot/internal/refstore"
	"github.com/maxkolot/telegram-subscription-bot/internal/video"
	"github.com/maxkolot/telegram-subscription-bot/internal/worker"
	"github.com/maxkolot/telegram-subscription-bot/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	logger := logging.New("worker")

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	defer store.Close()

	fastCache, usingRedis := cache.Connect(cfg.RedisAddr)
	if !usingRedis {
		logger.Warn().Str("addr", cfg.RedisAddr).
			Msg("redis unreachable, using in-process cache (non-durable, lost on restart)")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: 10 * time.Second})
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	tokens := refstore.New(fastCache, store, cfg.TokenLength, cfg.CacheTTL, logger)
	transcoder := video.NewTranscoder(cfg.TargetSide, logger)
	handler := worker.NewTaskHandler(bot, tokens, transcoder, cfg.TempDir, cfg.CallbackTokenLen, logger)

	// Transcoding is CPU-bound; Concurrency bounds how many run at once,
	// excess tasks wait in the queue.
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeTranscode, handler.HandleTranscodeTask)
	mux.HandleFunc(tasks.TypeTempSweep, handler.HandleTempSweepTask)

	logger.Info().Str("commit", CommitSHA).Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("could not run server")
	}
}
