package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/maxkolot/telegram-subscription-bot/internal/i18n"
	"github.com/maxkolot/telegram-subscription-bot/internal/moderation"
	"github.com/maxkolot/telegram-subscription-bot/internal/payload"
)

func (h *Handlers) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		h.log.Warn().Err(err).Msg("callback ack failed")
	}
	if cq.Message == nil || cq.From == nil {
		return
	}

	data := cq.Data
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	lang := h.langOrDefault(ctx, cq.From.ID)

	switch {
	case data == "lang_ru" || data == "lang_en":
		h.handleLanguageChoice(ctx, cq, strings.TrimPrefix(data, "lang_"))

	case data == "check_sub":
		h.edit(chatID, messageID, i18n.T(lang, "subscription_check"))
		h.checkGate(ctx, chatID, cq.From.ID, lang)

	case strings.HasPrefix(data, payload.ActionShareYes+"_"):
		h.handleShareYes(ctx, cq, lang)

	case data == payload.ActionShareNo:
		h.edit(chatID, messageID, i18n.T(lang, "share_declined"))

	case strings.HasPrefix(data, payload.ActionPublish+"_"), strings.HasPrefix(data, payload.ActionReject+"_"):
		h.handleModeration(ctx, cq, lang)

	case strings.HasPrefix(data, "adm_"):
		h.handleAdminCallback(ctx, cq, lang)

	default:
		h.log.Warn().Str("data", data).Msg("unknown callback")
	}
}

func (h *Handlers) handleLanguageChoice(ctx context.Context, cq *tgbotapi.CallbackQuery, lang string) {
	userID := cq.From.ID

	if err := h.cache.Set(ctx, langKey(userID), lang, 0); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("language cache write failed")
	}
	if err := h.store.SetUserLanguage(ctx, userID, lang); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("language store write failed")
	}

	h.edit(cq.Message.Chat.ID, cq.Message.MessageID, i18n.T(lang, "language_saved"))
	h.checkGate(ctx, cq.Message.Chat.ID, userID, lang)
}

func (h *Handlers) handleShareYes(ctx context.Context, cq *tgbotapi.CallbackQuery, lang string) {
	p, err := payload.Decode(cq.Data)
	if err != nil {
		h.log.Warn().Err(err).Str("data", cq.Data).Msg("malformed share callback")
		return
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch h.machine.Share(ctx, p.Token, cq.From) {
	case moderation.OK, moderation.AlreadyHandled:
		h.edit(chatID, messageID, i18n.T(lang, "share_thanks"))
	case moderation.Expired:
		h.edit(chatID, messageID, i18n.T(lang, "video_expired"))
	case moderation.Failed:
		h.edit(chatID, messageID, i18n.T(lang, "generic_error"))
	}
}

func (h *Handlers) handleModeration(ctx context.Context, cq *tgbotapi.CallbackQuery, lang string) {
	p, err := payload.Decode(cq.Data)
	if err != nil {
		h.log.Warn().Err(err).Str("data", cq.Data).Msg("malformed moderation callback")
		return
	}

	var outcome moderation.Outcome
	var doneKey string
	if p.Action == payload.ActionPublish {
		outcome = h.machine.Publish(ctx, cq.From.ID, p.Token, p.UserID)
		doneKey = "moderation_published"
	} else {
		outcome = h.machine.Reject(ctx, cq.From.ID, p.Token, p.UserID)
		doneKey = "moderation_rejected"
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch outcome {
	case moderation.OK:
		h.edit(chatID, messageID, i18n.T(lang, doneKey))
	case moderation.Unauthorized:
		// Silent deny: no state change, no explanation.
	case moderation.Expired:
		h.edit(chatID, messageID, i18n.T(lang, "video_expired"))
	case moderation.AlreadyHandled:
		h.edit(chatID, messageID, i18n.T(lang, "moderation_handled"))
	case moderation.Failed:
		h.edit(chatID, messageID, i18n.T(lang, "generic_error"))
	}
}
