package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/config"
	"github.com/maxkolot/telegram-subscription-bot/internal/db"
	"github.com/maxkolot/telegram-subscription-bot/internal/handlers"
	"github.com/maxkolot/telegram-subscription-bot/internal/logging"
	"github.com/maxkolot/telegram-subscription-bot/internal/membership"
	"github.com/maxkolot/telegram-subscription-bot/internal/middleware"
	"github.com/maxkolot/telegram-subscription-bot/internal/moderation"
	"github.com/maxkolot/telegram-subscription-bot/internal/onboarding"
	"github.com/maxkolot/telegram-subscription-bot/internal/refstore"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	logger := logging.New("bot")

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
	logger.Info().Str("account", bot.Self.UserName).Str("commit", CommitSHA).Msg("authorized")

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer asynqClient.Close()

	tokens := refstore.New(fastCache, store, cfg.TokenLength, cfg.CacheTTL, logger)
	verifier := membership.NewVerifier(bot, store, logger)
	machine := moderation.NewMachine(bot, store, tokens, cfg.ModeratorIDs,
		cfg.PublishChannelID, cfg.CallbackTokenLen, logger)
	fsm := onboarding.NewFSM(fastCache, store, verifier, logger)
	limiter := middleware.NewUserRateLimiter(rate.Every(2*time.Second), 3)

	h := handlers.New(bot, cfg, store, fastCache, verifier, machine, fsm, asynqClient, limiter, logger)

	go func() {
		logger.Info().Str("addr", cfg.HealthAddr).Msg("health endpoint up")
		if err := http.ListenAndServe(cfg.HealthAddr, handlers.NewHealthRouter(store, fastCache)); err != nil {
			logger.Error().Err(err).Msg("health server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info().Msg("shutting down")
		bot.StopReceivingUpdates()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	h.Run(bot.GetUpdatesChan(u))
}
