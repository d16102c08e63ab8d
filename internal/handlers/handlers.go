package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/config"
	"github.com/maxkolot/telegram-subscription-bot/internal/db"
	"github.com/maxkolot/telegram-subscription-bot/internal/i18n"
	"github.com/maxkolot/telegram-subscription-bot/internal/membership"
	"github.com/maxkolot/telegram-subscription-bot/internal/middleware"
	"github.com/maxkolot/telegram-subscription-bot/internal/moderation"
	"github.com/maxkolot/telegram-subscription-bot/internal/onboarding"
	"github.com/maxkolot/telegram-subscription-bot/pkg/tasks"
)

// BotSender is the outbound slice of the bot API the handlers need.
// Implemented by *tgbotapi.BotAPI.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handlers routes inbound updates to the gating, transcode, moderation
// and onboarding components. Every per-update error is caught here and
// turned into a log line plus a generic user message; nothing propagates
// far enough to kill the loop.
type Handlers struct {
	bot      BotSender
	cfg      *config.Config
	store    *db.Store
	cache    cache.Cache
	verifier *membership.Verifier
	machine  *moderation.Machine
	fsm      *onboarding.FSM
	enqueuer tasks.TaskEnqueuer
	limiter  *middleware.UserRateLimiter
	log      zerolog.Logger
}

func New(bot BotSender, cfg *config.Config, store *db.Store, c cache.Cache,
	verifier *membership.Verifier, machine *moderation.Machine, fsm *onboarding.FSM,
	enqueuer tasks.TaskEnqueuer, limiter *middleware.UserRateLimiter, log zerolog.Logger) *Handlers {
	return &Handlers{
		bot:      bot,
		cfg:      cfg,
		store:    store,
		cache:    c,
		verifier: verifier,
		machine:  machine,
		fsm:      fsm,
		enqueuer: enqueuer,
		limiter:  limiter,
		log:      log,
	}
}

func langKey(userID int64) string {
	return fmt.Sprintf("user_lang:%d", userID)
}

// userLang returns the cached language choice, empty when none was made.
func (h *Handlers) userLang(ctx context.Context, userID int64) string {
	lang, err := h.cache.Get(ctx, langKey(userID))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			h.log.Warn().Err(err).Int64("user_id", userID).Msg("language lookup failed")
		}
		return ""
	}
	return lang
}

func (h *Handlers) langOrDefault(ctx context.Context, userID int64) string {
	if lang := h.userLang(ctx, userID); lang != "" {
		return lang
	}
	return i18n.DefaultLang
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func (h *Handlers) edit(chatID int64, messageID int, text string) {
	if _, err := h.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("edit failed")
	}
}
