package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/maxkolot/telegram-subscription-bot/internal/i18n"
	"github.com/maxkolot/telegram-subscription-bot/internal/models"
	"github.com/maxkolot/telegram-subscription-bot/internal/payload"
	"github.com/maxkolot/telegram-subscription-bot/internal/refstore"
)

// Outcome is the explicit result of a transition attempt, so callers
// handle each case instead of relying on a catch-all error path.
type Outcome int

const (
	// OK: the transition was applied.
	OK Outcome = iota
	// Unauthorized: the actor is not a recognized moderator. Callers stay
	// silent — no state change, no notification, no explanation.
	Unauthorized
	// Expired: the artifact's handle could not be resolved; nothing was
	// changed.
	Expired
	// AlreadyHandled: another moderator finalized the artifact first, or it
	// was never shared. No state change.
	AlreadyHandled
	// Failed: an external call broke mid-transition.
	Failed
)

// Messenger is the outbound slice of the bot API the machine needs.
// Implemented by *tgbotapi.BotAPI.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Store is the durable-store slice the machine needs.
type Store interface {
	CircleByToken(ctx context.Context, token string) (*models.VideoCircle, error)
	MarkCirclePending(ctx context.Context, id int64) (bool, error)
	MarkCirclePublished(ctx context.Context, id, channelPostID int64) (bool, error)
	MarkCircleRejected(ctx context.Context, id int64) (bool, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Resolver maps short tokens back to media handles.
type Resolver interface {
	Get(ctx context.Context, token string) (string, error)
}

// Machine drives a circle from created through pending to a terminal
// published or rejected state, notifying submitter and moderators along
// the way.
type Machine struct {
	bot            Messenger
	store          Store
	tokens         Resolver
	moderatorIDs   []int64
	publishChannel int64
	callbackTokLen int
	log            zerolog.Logger
}

func NewMachine(bot Messenger, store Store, tokens Resolver, moderatorIDs []int64, publishChannel int64, callbackTokLen int, log zerolog.Logger) *Machine {
	return &Machine{
		bot:            bot,
		store:          store,
		tokens:         tokens,
		moderatorIDs:   moderatorIDs,
		publishChannel: publishChannel,
		callbackTokLen: callbackTokLen,
		log:            log,
	}
}

// Share moves a circle from created to pending and fans the artifact out
// to every configured moderator with a publish/reject prompt. Moderator
// delivery is best-effort: per-moderator failures are logged and do not
// abort the transition.
func (m *Machine) Share(ctx context.Context, token string, submitter *tgbotapi.User) Outcome {
	fileID, err := m.tokens.Get(ctx, token)
	if errors.Is(err, refstore.ErrNotFound) {
		return Expired
	}
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("token lookup failed")
		return Failed
	}

	circle, err := m.store.CircleByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return Expired
	}
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("circle lookup failed")
		return Failed
	}

	moved, err := m.store.MarkCirclePending(ctx, circle.ID)
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("pending transition failed")
		return Failed
	}
	if !moved {
		return AlreadyHandled
	}

	m.notifyModerators(token, fileID, submitter)
	return OK
}

// Publish forwards a pending circle to the public channel, records the
// post id and tells the submitter where to find it. Non-moderators are
// silently ignored.
func (m *Machine) Publish(ctx context.Context, actorID int64, token string, submitterID int64) Outcome {
	if !m.isModerator(actorID) {
		return Unauthorized
	}

	fileID, err := m.tokens.Get(ctx, token)
	if errors.Is(err, refstore.ErrNotFound) {
		return Expired
	}
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("token lookup failed")
		return Failed
	}

	circle, err := m.store.CircleByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return Expired
	}
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("circle lookup failed")
		return Failed
	}
	if circle.Status != models.StatusPending {
		return AlreadyHandled
	}

	note := tgbotapi.NewVideoNote(m.publishChannel, 0, tgbotapi.FileID(fileID))
	sent, err := m.bot.Send(note)
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("publish to channel failed")
		return Failed
	}

	moved, err := m.store.MarkCirclePublished(ctx, circle.ID, int64(sent.MessageID))
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("published transition failed")
		return Failed
	}
	if !moved {
		// Lost the race after the send; the winner already notified.
		return AlreadyHandled
	}

	m.notifySubmitter(ctx, submitterID, "video_published", m.postLink(sent.MessageID))
	return OK
}

// Reject finalizes a pending circle as rejected and tells the submitter.
// Non-moderators are silently ignored.
func (m *Machine) Reject(ctx context.Context, actorID int64, token string, submitterID int64) Outcome {
	if !m.isModerator(actorID) {
		return Unauthorized
	}

	circle, err := m.store.CircleByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return Expired
	}
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("circle lookup failed")
		return Failed
	}

	moved, err := m.store.MarkCircleRejected(ctx, circle.ID)
	if err != nil {
		m.log.Error().Err(err).Str("token", token).Msg("rejected transition failed")
		return Failed
	}
	if !moved {
		return AlreadyHandled
	}

	m.notifySubmitter(ctx, submitterID, "video_rejected", "")
	return OK
}

func (m *Machine) isModerator(id int64) bool {
	for _, mod := range m.moderatorIDs {
		if mod == id {
			return true
		}
	}
	return false
}

func (m *Machine) notifyModerators(token, fileID string, submitter *tgbotapi.User) {
	short := payload.Truncate(token, m.callbackTokLen)
	publishData, err := payload.Encode(payload.ActionPublish, short, submitter.ID)
	if err != nil {
		m.log.Error().Err(err).Msg("encode publish payload")
		return
	}
	rejectData, err := payload.Encode(payload.ActionReject, short, submitter.ID)
	if err != nil {
		m.log.Error().Err(err).Msg("encode reject payload")
		return
	}

	username := submitter.UserName
	if username == "" {
		username = "-"
	}
	info := fmt.Sprintf("%s\n%s (@%s, ID: %d)",
		i18n.T(i18n.DefaultLang, "moderation_new"), submitter.FirstName, username, submitter.ID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(i18n.DefaultLang, "moderation_publish"), publishData),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(i18n.DefaultLang, "moderation_reject"), rejectData),
		),
	)

	for _, modID := range m.moderatorIDs {
		if _, err := m.bot.Send(tgbotapi.NewVideoNote(modID, 0, tgbotapi.FileID(fileID))); err != nil {
			m.log.Error().Err(err).Int64("moderator_id", modID).Msg("moderator video delivery failed")
			continue
		}
		msg := tgbotapi.NewMessage(modID, info)
		msg.ReplyMarkup = keyboard
		if _, err := m.bot.Send(msg); err != nil {
			m.log.Error().Err(err).Int64("moderator_id", modID).Msg("moderator prompt delivery failed")
		}
	}
}

func (m *Machine) notifySubmitter(ctx context.Context, submitterID int64, textKey, link string) {
	lang := i18n.DefaultLang
	if user, err := m.store.GetUser(ctx, submitterID); err == nil {
		lang = user.Language
	}

	msg := tgbotapi.NewMessage(submitterID, i18n.T(lang, textKey))
	if link != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(i18n.T(lang, "view_in_channel"), link),
			),
		)
	}
	if _, err := m.bot.Send(msg); err != nil {
		m.log.Error().Err(err).Int64("user_id", submitterID).Msg("submitter notification failed")
	}
}

// postLink builds a t.me link to a post in the private-channel form, where
// the -100 prefix of the channel id is dropped.
func (m *Machine) postLink(messageID int) string {
	id := strconv.FormatInt(m.publishChannel, 10)
	id = strings.TrimPrefix(id, "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}
