package membership

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// ChatMemberGetter is the slice of the bot API the verifier needs. It is
// implemented by *tgbotapi.BotAPI and mocked in tests.
type ChatMemberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Store is the durable-store slice the verifier needs.
type Store interface {
	ActiveChannels(ctx context.Context) ([]models.Channel, error)
	UpsertSubscription(ctx context.Context, userID, channelID int64, subscribed bool) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	SetUserSubscribed(ctx context.Context, id int64, subscribed bool) error
}

// Result is the outcome of one membership check.
type Result struct {
	// Satisfied is true when the user is a member of every active channel.
	Satisfied bool
	// Missing lists the channels the user is not a member of, in check order.
	Missing []models.Channel
	// FirstSatisfied is true only when this check flipped the stored
	// aggregate from false to true. The thank-you message keys off it.
	FirstSatisfied bool
}

// Verifier checks a user's membership across all active channels and owns
// the user's aggregate membership flag.
type Verifier struct {
	api   ChatMemberGetter
	store Store
	log   zerolog.Logger
}

func NewVerifier(api ChatMemberGetter, store Store, log zerolog.Logger) *Verifier {
	return &Verifier{api: api, store: store, log: log}
}

// Check queries the platform for the user's role in every active channel
// and upserts the observed (user, channel) record. Any query error counts
// as not-a-member. With zero active channels the result is vacuously
// satisfied and nothing is written.
func (v *Verifier) Check(ctx context.Context, userID int64) (Result, error) {
	channels, err := v.store.ActiveChannels(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(channels) == 0 {
		return Result{Satisfied: true}, nil
	}

	res := Result{Satisfied: true}
	for _, ch := range channels {
		subscribed := v.isMember(ch.ChatID, userID)
		if !subscribed {
			res.Satisfied = false
			res.Missing = append(res.Missing, ch)
		}
		if err := v.store.UpsertSubscription(ctx, userID, ch.ID, subscribed); err != nil {
			v.log.Error().Err(err).Int64("user_id", userID).Int64("channel_id", ch.ID).
				Msg("subscription upsert failed")
		}
	}

	user, err := v.store.GetUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if err := v.store.SetUserSubscribed(ctx, userID, res.Satisfied); err != nil {
		return Result{}, err
	}

	res.FirstSatisfied = res.Satisfied && !user.Subscribed
	return res, nil
}

// IsChannelAdmin reports whether the user holds an administrative or owner
// role in the given chat. Used by admin onboarding to prove channel
// ownership. Query errors count as not-an-admin.
func (v *Verifier) IsChannelAdmin(chatID, userID int64) bool {
	member, err := v.api.GetChatMember(chatMemberConfig(chatID, userID))
	if err != nil {
		v.log.Warn().Err(err).Int64("chat_id", chatID).Int64("user_id", userID).
			Msg("admin role query failed")
		return false
	}
	return member.Status == "administrator" || member.Status == "creator"
}

// isMember treats any query failure (timeout, bot not in channel, hidden
// membership) as not-a-member.
func (v *Verifier) isMember(chatID, userID int64) bool {
	member, err := v.api.GetChatMember(chatMemberConfig(chatID, userID))
	if err != nil {
		v.log.Warn().Err(err).Int64("chat_id", chatID).Int64("user_id", userID).
			Msg("membership query failed, counting as not subscribed")
		return false
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

func chatMemberConfig(chatID, userID int64) tgbotapi.GetChatMemberConfig {
	return tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	}
}
