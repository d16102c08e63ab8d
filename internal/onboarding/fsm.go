package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/models"
)

// Step is one state of the linear channel-registration dialogue.
type Step string

const (
	StepName    Step = "awaiting_name"
	StepButton  Step = "awaiting_button_text"
	StepForward Step = "awaiting_forwarded_post"
	StepLink    Step = "awaiting_link"
)

// Event tells the caller what just happened so it can pick the reply. The
// FSM never talks to the chat platform itself.
type Event int

const (
	// None: no live session, or the input type has no meaning in the
	// current step. Callers stay silent.
	None Event = iota
	// AskButton, AskForward, AskLink: advanced one step, prompt for the
	// next field.
	AskButton
	AskForward
	AskLink
	// InvalidForward: the message was not a forwarded channel post; the
	// step is unchanged.
	InvalidForward
	// NotAdmin: the initiating admin does not administer the origin
	// channel; the step is unchanged.
	NotAdmin
	// Committed: the channel was created and the session cleared.
	Committed
)

// Session is the draft accumulated across the dialogue. One session exists
// per admin id; a new Start replaces any live one.
type Session struct {
	Step       Step   `json:"step"`
	Name       string `json:"name"`
	ButtonText string `json:"button_text"`
	ChatID     int64  `json:"chat_id"`
	Link       string `json:"link"`
}

// AdminChecker proves the initiating admin administers the forwarded
// post's origin channel.
type AdminChecker interface {
	IsChannelAdmin(chatID, userID int64) bool
}

// Store commits the finished draft.
type Store interface {
	CreateChannel(ctx context.Context, chatID int64, name, link, buttonText string) (*models.Channel, error)
}

// FSM drives the admin channel-registration dialogue. Session state lives
// in the cache keyed per admin id, so concurrent dialogues by different
// admins cannot mix drafts.
type FSM struct {
	cache   cache.Cache
	store   Store
	checker AdminChecker
	log     zerolog.Logger
}

func NewFSM(c cache.Cache, store Store, checker AdminChecker, log zerolog.Logger) *FSM {
	return &FSM{cache: c, store: store, checker: checker, log: log}
}

func sessionKey(adminID int64) string {
	return fmt.Sprintf("admin_state:%d", adminID)
}

// Start opens a fresh session at the first step, replacing any live one.
func (f *FSM) Start(ctx context.Context, adminID int64) error {
	return f.save(ctx, adminID, &Session{Step: StepName})
}

// Clear abandons the session, if any.
func (f *FSM) Clear(ctx context.Context, adminID int64) error {
	return f.cache.Del(ctx, sessionKey(adminID))
}

// Session loads the live session for an admin, or nil when none exists.
func (f *FSM) Session(ctx context.Context, adminID int64) (*Session, error) {
	raw, err := f.cache.Get(ctx, sessionKey(adminID))
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode onboarding session: %w", err)
	}
	return &s, nil
}

// HandleText feeds a plain text message into the dialogue. Text is only
// meaningful in the name, button-text and link steps.
func (f *FSM) HandleText(ctx context.Context, adminID int64, text string) (Event, error) {
	s, err := f.Session(ctx, adminID)
	if err != nil {
		return None, err
	}
	if s == nil {
		return None, nil
	}

	switch s.Step {
	case StepName:
		s.Name = text
		s.Step = StepButton
		if err := f.save(ctx, adminID, s); err != nil {
			return None, err
		}
		return AskButton, nil

	case StepButton:
		s.ButtonText = text
		s.Step = StepForward
		if err := f.save(ctx, adminID, s); err != nil {
			return None, err
		}
		return AskForward, nil

	case StepLink:
		s.Link = text
		if _, err := f.store.CreateChannel(ctx, s.ChatID, s.Name, s.Link, s.ButtonText); err != nil {
			return None, fmt.Errorf("commit channel: %w", err)
		}
		if err := f.Clear(ctx, adminID); err != nil {
			f.log.Warn().Err(err).Int64("admin_id", adminID).Msg("session clear failed after commit")
		}
		return Committed, nil
	}

	// A text message during the forwarded-post step changes nothing.
	return None, nil
}

// HandleForward feeds a forwarded message into the dialogue. Only
// meaningful in the forwarded-post step, and only advances when the admin
// holds an administrative role in the origin channel.
func (f *FSM) HandleForward(ctx context.Context, adminID, originChatID int64, fromChannel bool) (Event, error) {
	s, err := f.Session(ctx, adminID)
	if err != nil {
		return None, err
	}
	if s == nil || s.Step != StepForward {
		return None, nil
	}

	if !fromChannel || originChatID == 0 {
		return InvalidForward, nil
	}

	if !f.checker.IsChannelAdmin(originChatID, adminID) {
		return NotAdmin, nil
	}

	s.ChatID = originChatID
	s.Step = StepLink
	if err := f.save(ctx, adminID, s); err != nil {
		return None, err
	}
	return AskLink, nil
}

func (f *FSM) save(ctx context.Context, adminID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return f.cache.Set(ctx, sessionKey(adminID), string(raw), 0)
}
