package handlers

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/maxkolot/telegram-subscription-bot/internal/i18n"
	"github.com/maxkolot/telegram-subscription-bot/pkg/tasks"
)

// Run consumes the update channel until it is closed. Each update gets a
// bounded context; the transcode itself runs in the worker process, so
// nothing here blocks longer than the platform calls do.
func (h *Handlers) Run(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		h.HandleUpdate(ctx, update)
		cancel()
	}
}

// HandleUpdate routes one update.
func (h *Handlers) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	msg := update.Message
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.handleStart(ctx, msg)
		case "help":
			h.reply(msg.Chat.ID, i18n.T(h.langOrDefault(ctx, msg.From.ID), "help"))
		case "admin":
			h.handleAdminCommand(ctx, msg)
		}
		return
	}

	if msg.Video != nil {
		h.handleVideo(ctx, msg)
		return
	}

	if msg.ForwardFromChat != nil {
		h.handleForward(ctx, msg)
		return
	}

	if msg.Text != "" {
		h.handleText(ctx, msg)
	}
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if _, err := h.store.GetOrCreateUser(ctx, userID, msg.From.UserName, i18n.DefaultLang); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("get-or-create user failed")
		h.reply(msg.Chat.ID, i18n.T(i18n.DefaultLang, "generic_error"))
		return
	}

	lang := h.userLang(ctx, userID)
	if lang == "" {
		h.sendLanguageKeyboard(msg.Chat.ID)
		return
	}

	h.checkGate(ctx, msg.Chat.ID, userID, lang)
}

func (h *Handlers) sendLanguageKeyboard(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, i18n.T(i18n.DefaultLang, "choose_language"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", "lang_ru"),
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", "lang_en"),
		),
	)
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

// checkGate runs the membership check and responds accordingly. Returns
// true when the user is unlocked. A verifier error fails closed.
func (h *Handlers) checkGate(ctx context.Context, chatID, userID int64, lang string) bool {
	res, err := h.verifier.Check(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("membership check failed")
		h.reply(chatID, i18n.T(lang, "generic_error"))
		return false
	}

	if !res.Satisfied {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(res.Missing)+1)
		for _, ch := range res.Missing {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(ch.ButtonText, ch.Link),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "check_again"), "check_sub"),
		))

		msg := tgbotapi.NewMessage(chatID, i18n.T(lang, "subscription_required"))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		if _, err := h.bot.Send(msg); err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		}
		return false
	}

	if res.FirstSatisfied {
		h.reply(chatID, i18n.T(lang, "subscription_success"))
	}
	h.reply(chatID, i18n.T(lang, "main_menu"))
	return true
}

func (h *Handlers) handleVideo(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	lang := h.langOrDefault(ctx, userID)

	if !h.limiter.Allow(userID) {
		h.log.Warn().Int64("user_id", userID).Msg("rate limited")
		return
	}

	if _, err := h.store.GetOrCreateUser(ctx, userID, msg.From.UserName, lang); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("get-or-create user failed")
		h.reply(msg.Chat.ID, i18n.T(lang, "generic_error"))
		return
	}

	// Gating strictly precedes dispatch: no transcode is enqueued for a
	// user whose membership hasn't just passed.
	if !h.checkGate(ctx, msg.Chat.ID, userID, lang) {
		return
	}

	if msg.Video.Duration > h.cfg.MaxVideoDuration {
		h.reply(msg.Chat.ID, i18n.T(lang, "video_too_long"))
		return
	}

	progress, err := h.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, i18n.T(lang, "processing_video")))
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send failed")
		return
	}

	task, err := tasks.NewTranscodeTask(tasks.TranscodeTaskPayload{
		ChatID:            msg.Chat.ID,
		UserID:            userID,
		FileID:            msg.Video.FileID,
		Language:          lang,
		ProgressMessageID: progress.MessageID,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("build transcode task failed")
		h.edit(msg.Chat.ID, progress.MessageID, i18n.T(lang, "processing_error"))
		return
	}
	if _, err := h.enqueuer.Enqueue(task); err != nil {
		h.log.Error().Err(err).Msg("enqueue transcode task failed")
		h.edit(msg.Chat.ID, progress.MessageID, i18n.T(lang, "processing_error"))
	}
}
