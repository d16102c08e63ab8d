package onboarding

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

type fakeChannelStore struct {
	created []models.Channel
}

func (f *fakeChannelStore) CreateChannel(ctx context.Context, chatID int64, name, link, buttonText string) (*models.Channel, error) {
	ch := models.Channel{ID: int64(len(f.created) + 1), ChatID: chatID, Name: name, Link: link, ButtonText: buttonText, IsActive: true}
	f.created = append(f.created, ch)
	return &ch, nil
}

type fakeAdminChecker struct {
	adminOf map[int64]bool
}

func (f *fakeAdminChecker) IsChannelAdmin(chatID, userID int64) bool {
	return f.adminOf[chatID]
}

const adminID = int64(900)

func newTestFSM(adminOf map[int64]bool) (*FSM, *fakeChannelStore) {
	store := &fakeChannelStore{}
	f := NewFSM(cache.NewMemory(), store, &fakeAdminChecker{adminOf: adminOf}, zerolog.Nop())
	return f, store
}

func TestFullWalkCommitsChannel(t *testing.T) {
	f, store := newTestFSM(map[int64]bool{-100555: true})
	ctx := context.Background()

	require.NoError(t, f.Start(ctx, adminID))

	ev, err := f.HandleText(ctx, adminID, "My Channel")
	require.NoError(t, err)
	assert.Equal(t, AskButton, ev)

	ev, err = f.HandleText(ctx, adminID, "Subscribe!")
	require.NoError(t, err)
	assert.Equal(t, AskForward, ev)

	ev, err = f.HandleForward(ctx, adminID, -100555, true)
	require.NoError(t, err)
	assert.Equal(t, AskLink, ev)

	ev, err = f.HandleText(ctx, adminID, "https://t.me/mychannel")
	require.NoError(t, err)
	assert.Equal(t, Committed, ev)

	require.Len(t, store.created, 1)
	ch := store.created[0]
	assert.Equal(t, int64(-100555), ch.ChatID)
	assert.Equal(t, "My Channel", ch.Name)
	assert.Equal(t, "Subscribe!", ch.ButtonText)
	assert.Equal(t, "https://t.me/mychannel", ch.Link)

	// Session is gone after commit.
	s, err := f.Session(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestForwardFromUnmanagedChannelDoesNotAdvance(t *testing.T) {
	f, store := newTestFSM(map[int64]bool{-100555: false})
	ctx := context.Background()

	require.NoError(t, f.Start(ctx, adminID))
	_, err := f.HandleText(ctx, adminID, "Name")
	require.NoError(t, err)
	_, err = f.HandleText(ctx, adminID, "Button")
	require.NoError(t, err)

	ev, err := f.HandleForward(ctx, adminID, -100555, true)
	require.NoError(t, err)
	assert.Equal(t, NotAdmin, ev)

	s, err := f.Session(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StepForward, s.Step, "failed authorization keeps the step unchanged")
	assert.Empty(t, store.created)
}

func TestNonChannelForwardIsInvalid(t *testing.T) {
	f, _ := newTestFSM(nil)
	ctx := context.Background()

	require.NoError(t, f.Start(ctx, adminID))
	_, err := f.HandleText(ctx, adminID, "Name")
	require.NoError(t, err)
	_, err = f.HandleText(ctx, adminID, "Button")
	require.NoError(t, err)

	ev, err := f.HandleForward(ctx, adminID, 12345, false)
	require.NoError(t, err)
	assert.Equal(t, InvalidForward, ev)
}

func TestTextDuringForwardStepIsIgnored(t *testing.T) {
	f, _ := newTestFSM(nil)
	ctx := context.Background()

	require.NoError(t, f.Start(ctx, adminID))
	_, err := f.HandleText(ctx, adminID, "Name")
	require.NoError(t, err)
	_, err = f.HandleText(ctx, adminID, "Button")
	require.NoError(t, err)

	ev, err := f.HandleText(ctx, adminID, "random text")
	require.NoError(t, err)
	assert.Equal(t, None, ev)

	s, err := f.Session(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StepForward, s.Step)
}

func TestNoSessionIgnoresInput(t *testing.T) {
	f, _ := newTestFSM(nil)
	ctx := context.Background()

	ev, err := f.HandleText(ctx, adminID, "hello")
	require.NoError(t, err)
	assert.Equal(t, None, ev)

	ev, err = f.HandleForward(ctx, adminID, -100555, true)
	require.NoError(t, err)
	assert.Equal(t, None, ev)
}

func TestRestartReplacesDraft(t *testing.T) {
	f, _ := newTestFSM(nil)
	ctx := context.Background()

	require.NoError(t, f.Start(ctx, adminID))
	_, err := f.HandleText(ctx, adminID, "Old Name")
	require.NoError(t, err)

	require.NoError(t, f.Start(ctx, adminID))
	s, err := f.Session(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StepName, s.Step)
	assert.Empty(t, s.Name)
}

func TestSessionsAreScopedPerAdmin(t *testing.T) {
	f, _ := newTestFSM(nil)
	ctx := context.Background()
	other := int64(901)

	require.NoError(t, f.Start(ctx, adminID))
	require.NoError(t, f.Start(ctx, other))

	_, err := f.HandleText(ctx, adminID, "Alpha")
	require.NoError(t, err)

	s, err := f.Session(ctx, other)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StepName, s.Step)
	assert.Empty(t, s.Name, "one admin's draft must not leak into another's")
}
