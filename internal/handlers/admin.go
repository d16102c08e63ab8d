package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/maxkolot/telegram-subscription-bot/internal/i18n"
	"github.com/maxkolot/telegram-subscription-bot/internal/onboarding"
)

// handleAdminCommand opens the admin panel. Non-operators get the same
// generic refusal a disabled feature would.
func (h *Handlers) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	lang := h.langOrDefault(ctx, msg.From.ID)

	if !h.cfg.IsModerator(msg.From.ID) {
		h.reply(msg.Chat.ID, i18n.T(lang, "not_available"))
		return
	}

	panel := tgbotapi.NewMessage(msg.Chat.ID, i18n.T(lang, "admin_welcome"))
	panel.ReplyMarkup = adminPanelKeyboard(lang)
	if _, err := h.bot.Send(panel); err != nil {
		h.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send failed")
	}
}

func adminPanelKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "admin_channels"), "adm_list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "admin_add_channel"), "adm_add"),
		),
	)
}

func (h *Handlers) handleAdminCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, lang string) {
	if !h.cfg.IsModerator(cq.From.ID) {
		return
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	data := cq.Data

	switch {
	case data == "adm_panel":
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
			i18n.T(lang, "admin_welcome"), adminPanelKeyboard(lang))
		if _, err := h.bot.Send(edit); err != nil {
			h.log.Error().Err(err).Msg("edit failed")
		}

	case data == "adm_list":
		h.showChannelsList(ctx, chatID, messageID, lang)

	case data == "adm_add":
		if err := h.fsm.Start(ctx, cq.From.ID); err != nil {
			h.log.Error().Err(err).Int64("admin_id", cq.From.ID).Msg("onboarding start failed")
			h.edit(chatID, messageID, i18n.T(lang, "generic_error"))
			return
		}
		h.edit(chatID, messageID, i18n.T(lang, "admin_name_prompt"))

	case strings.HasPrefix(data, "adm_del_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "adm_del_"), 10, 64)
		if err != nil {
			h.log.Warn().Str("data", data).Msg("malformed delete callback")
			return
		}
		if err := h.store.DeleteChannel(ctx, id); err != nil {
			h.log.Error().Err(err).Int64("channel_id", id).Msg("channel delete failed")
			h.edit(chatID, messageID, i18n.T(lang, "generic_error"))
			return
		}
		h.showChannelsList(ctx, chatID, messageID, lang)
	}
}

func (h *Handlers) showChannelsList(ctx context.Context, chatID int64, messageID int, lang string) {
	channels, err := h.store.AllChannels(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("channel list failed")
		h.edit(chatID, messageID, i18n.T(lang, "generic_error"))
		return
	}

	text := i18n.T(lang, "admin_channels")
	if len(channels) == 0 {
		text = i18n.T(lang, "admin_no_channels")
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %s", ch.Name, i18n.T(lang, "admin_delete")),
				fmt.Sprintf("adm_del_%d", ch.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "admin_back"), "adm_panel"),
	))

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text,
		tgbotapi.NewInlineKeyboardMarkup(rows...))
	if _, err := h.bot.Send(edit); err != nil {
		h.log.Error().Err(err).Msg("edit failed")
	}
}

// handleText feeds plain text into a live onboarding session. Only
// operators ever have one; everyone else's stray text is ignored.
func (h *Handlers) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if !h.cfg.IsModerator(msg.From.ID) {
		return
	}
	lang := h.langOrDefault(ctx, msg.From.ID)

	ev, err := h.fsm.HandleText(ctx, msg.From.ID, msg.Text)
	if err != nil {
		h.log.Error().Err(err).Int64("admin_id", msg.From.ID).Msg("onboarding text failed")
		h.reply(msg.Chat.ID, i18n.T(lang, "generic_error"))
		return
	}

	switch ev {
	case onboarding.AskButton:
		h.reply(msg.Chat.ID, i18n.T(lang, "admin_button_prompt"))
	case onboarding.AskForward:
		h.reply(msg.Chat.ID, i18n.T(lang, "admin_forward_prompt"))
	case onboarding.Committed:
		h.reply(msg.Chat.ID, i18n.T(lang, "admin_channel_added"))
	}
}

// handleForward feeds a forwarded message into a live onboarding session.
func (h *Handlers) handleForward(ctx context.Context, msg *tgbotapi.Message) {
	if !h.cfg.IsModerator(msg.From.ID) {
		return
	}
	lang := h.langOrDefault(ctx, msg.From.ID)

	var originChatID int64
	fromChannel := false
	if msg.ForwardFromChat != nil {
		originChatID = msg.ForwardFromChat.ID
		fromChannel = msg.ForwardFromChat.IsChannel()
	}

	ev, err := h.fsm.HandleForward(ctx, msg.From.ID, originChatID, fromChannel)
	if err != nil {
		h.log.Error().Err(err).Int64("admin_id", msg.From.ID).Msg("onboarding forward failed")
		h.reply(msg.Chat.ID, i18n.T(lang, "generic_error"))
		return
	}

	switch ev {
	case onboarding.AskLink:
		h.reply(msg.Chat.ID, i18n.T(lang, "admin_link_prompt"))
	case onboarding.InvalidForward:
		h.reply(msg.Chat.ID, i18n.T(lang, "admin_invalid_forward"))
	case onboarding.NotAdmin:
		h.reply(msg.Chat.ID, i18n.T(lang, "admin_not_admin"))
	}
}
