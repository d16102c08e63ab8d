package main

import (
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/maxkolot/telegram-subscription-bot/internal/logging"
	"github.com/maxkolot/telegram-subscription-bot/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	logger := logging.New("scheduler")

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{},
	)

	task, err := tasks.NewTempSweepTask()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create task")
	}

	if _, err := scheduler.Register("@every 1h", task); err != nil {
		logger.Fatal().Err(err).Msg("could not register task")
	}

	logger.Info().Str("commit", CommitSHA).Msg("scheduler starting")
	if err := scheduler.Run(); err != nil {
		logger.Fatal().Err(err).Msg("could not run scheduler")
	}
}
