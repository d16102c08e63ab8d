package membership

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// mockChatAPI returns a configured status per chat id, or an error.
type mockChatAPI struct {
	statuses map[int64]string
	errs     map[int64]error
}

func (m *mockChatAPI) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	chatID := config.ChatID
	if err, ok := m.errs[chatID]; ok {
		return tgbotapi.ChatMember{}, err
	}
	return tgbotapi.ChatMember{Status: m.statuses[chatID]}, nil
}

type mockStore struct {
	channels []models.Channel
	user     models.User

	upserts    map[int64]bool // channel id -> observed value
	aggregates []bool
}

func newMockStore(channels []models.Channel, subscribed bool) *mockStore {
	return &mockStore{
		channels: channels,
		user:     models.User{ID: 1, Subscribed: subscribed},
		upserts:  make(map[int64]bool),
	}
}

func (m *mockStore) ActiveChannels(ctx context.Context) ([]models.Channel, error) {
	return m.channels, nil
}

func (m *mockStore) UpsertSubscription(ctx context.Context, userID, channelID int64, subscribed bool) error {
	m.upserts[channelID] = subscribed
	return nil
}

func (m *mockStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := m.user
	return &u, nil
}

func (m *mockStore) SetUserSubscribed(ctx context.Context, id int64, subscribed bool) error {
	m.aggregates = append(m.aggregates, subscribed)
	m.user.Subscribed = subscribed
	return nil
}

func testChannels() []models.Channel {
	return []models.Channel{
		{ID: 10, ChatID: -100111, Name: "First"},
		{ID: 20, ChatID: -100222, Name: "Second"},
	}
}

func TestCheckNoActiveChannels(t *testing.T) {
	store := newMockStore(nil, false)
	v := NewVerifier(&mockChatAPI{}, store, zerolog.Nop())

	res, err := v.Check(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.Empty(t, res.Missing)
	assert.Empty(t, store.upserts, "vacuous pass must not write subscription records")
	assert.Empty(t, store.aggregates, "vacuous pass must not touch the aggregate")
}

func TestCheckAllMember(t *testing.T) {
	api := &mockChatAPI{statuses: map[int64]string{-100111: "member", -100222: "creator"}}
	store := newMockStore(testChannels(), true)
	v := NewVerifier(api, store, zerolog.Nop())

	res, err := v.Check(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.Empty(t, res.Missing)
	assert.Equal(t, map[int64]bool{10: true, 20: true}, store.upserts)
	assert.Equal(t, []bool{true}, store.aggregates)
}

func TestCheckOneMissing(t *testing.T) {
	api := &mockChatAPI{statuses: map[int64]string{-100111: "member", -100222: "left"}}
	store := newMockStore(testChannels(), false)
	v := NewVerifier(api, store, zerolog.Nop())

	res, err := v.Check(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, res.Satisfied)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, int64(20), res.Missing[0].ID)
	assert.Equal(t, map[int64]bool{10: true, 20: false}, store.upserts)
	assert.Equal(t, []bool{false}, store.aggregates)
}

func TestCheckQueryErrorFailsClosed(t *testing.T) {
	api := &mockChatAPI{
		statuses: map[int64]string{-100111: "member"},
		errs:     map[int64]error{-100222: errors.New("bot is not a member of the channel chat")},
	}
	store := newMockStore(testChannels(), false)
	v := NewVerifier(api, store, zerolog.Nop())

	res, err := v.Check(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, res.Satisfied)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, int64(20), res.Missing[0].ID)
	assert.False(t, store.upserts[20])
}

// The thank-you notification fires exactly once, on the false→true
// transition: fail, fail, pass, pass.
func TestCheckFirstSatisfiedTransition(t *testing.T) {
	api := &mockChatAPI{statuses: map[int64]string{-100111: "left", -100222: "left"}}
	store := newMockStore(testChannels(), false)
	v := NewVerifier(api, store, zerolog.Nop())
	ctx := context.Background()

	res, err := v.Check(ctx, 1)
	require.NoError(t, err)
	assert.False(t, res.FirstSatisfied)

	res, err = v.Check(ctx, 1)
	require.NoError(t, err)
	assert.False(t, res.FirstSatisfied)

	api.statuses = map[int64]string{-100111: "member", -100222: "administrator"}

	res, err = v.Check(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.True(t, res.FirstSatisfied, "false→true must report the transition")

	res, err = v.Check(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.False(t, res.FirstSatisfied, "true→true must not repeat the thank-you")
}

func TestIsChannelAdmin(t *testing.T) {
	api := &mockChatAPI{statuses: map[int64]string{-100111: "administrator", -100222: "member"}}
	v := NewVerifier(api, newMockStore(nil, false), zerolog.Nop())

	assert.True(t, v.IsChannelAdmin(-100111, 1))
	assert.False(t, v.IsChannelAdmin(-100222, 1), "regular member is not a channel admin")

	api.errs = map[int64]error{-100111: errors.New("timeout")}
	assert.False(t, v.IsChannelAdmin(-100111, 1), "query error counts as not admin")
}
