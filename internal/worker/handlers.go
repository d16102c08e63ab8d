package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/maxkolot/telegram-subscription-bot/internal/i18n"
	"github.com/maxkolot/telegram-subscription-bot/internal/payload"
	"github.com/maxkolot/telegram-subscription-bot/internal/video"
	"github.com/maxkolot/telegram-subscription-bot/pkg/tasks"
)

// TelegramAPI is the slice of the bot API the worker needs. Implemented by
// *tgbotapi.BotAPI.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// TokenStore registers finished circles for callback use.
type TokenStore interface {
	Put(ctx context.Context, fileID string, userID int64) (string, error)
}

// TaskHandler processes transcode tasks off the request path. The asynq
// server's Concurrency setting bounds how many run at once.
type TaskHandler struct {
	api        TelegramAPI
	tokens     TokenStore
	transcoder *video.Transcoder
	tempDir    string
	tokLen     int
	httpClient *http.Client
	log        zerolog.Logger
}

func NewTaskHandler(api TelegramAPI, tokens TokenStore, transcoder *video.Transcoder, tempDir string, tokLen int, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		api:        api,
		tokens:     tokens,
		transcoder: transcoder,
		tempDir:    tempDir,
		tokLen:     tokLen,
		// Media transfers get the long timeout; control calls use the bot
		// client's own shorter one.
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

// HandleTranscodeTask downloads the submitted video, produces the circle
// clip, sends it back as a video note and registers its handle for the
// share flow. Temp files are removed no matter how far processing got.
func (h *TaskHandler) HandleTranscodeTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.TranscodeTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	log := h.log.With().Int64("user_id", p.UserID).Logger()
	log.Info().Msg("transcoding submitted video")

	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	input := filepath.Join(h.tempDir, fmt.Sprintf("input_%d_%d.mp4", p.UserID, time.Now().UnixNano()))
	output := filepath.Join(h.tempDir, fmt.Sprintf("output_%d_%d.mp4", p.UserID, time.Now().UnixNano()))
	defer func() {
		for _, f := range []string{input, output} {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				log.Error().Err(err).Str("file", f).Msg("temp file cleanup failed")
			}
		}
	}()

	if err := h.download(ctx, p.FileID, input); err != nil {
		log.Error().Err(err).Msg("source download failed")
		return h.fail(p, err)
	}

	if err := h.transcoder.Process(ctx, input, output); err != nil {
		log.Error().Err(err).Msg("transcode failed")
		return h.fail(p, err)
	}

	note := tgbotapi.NewVideoNote(p.ChatID, h.transcoder.TargetSide, tgbotapi.FilePath(output))
	sent, err := h.api.Send(note)
	if err != nil {
		log.Error().Err(err).Msg("video note delivery failed")
		return h.fail(p, err)
	}
	if sent.VideoNote == nil {
		log.Error().Msg("sent message has no video note")
		return h.fail(p, fmt.Errorf("no video note in response"))
	}

	token, err := h.tokens.Put(ctx, sent.VideoNote.FileID, p.UserID)
	if err != nil {
		log.Error().Err(err).Msg("token registration failed")
		return h.fail(p, err)
	}

	if err := h.sendSharePrompt(p, token); err != nil {
		log.Error().Err(err).Msg("share prompt delivery failed")
		return h.fail(p, err)
	}

	log.Info().Str("token", token).Msg("circle delivered")
	return nil
}

// HandleTempSweepTask removes temp artifacts older than an hour. A
// backstop for crashes between download and the deferred cleanup.
func (h *TaskHandler) HandleTempSweepTask(ctx context.Context, t *asynq.Task) error {
	entries, err := os.ReadDir(h.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read temp dir: %w", err)
	}

	cutoff := time.Now().Add(-time.Hour)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(h.tempDir, entry.Name())
			if err := os.Remove(path); err != nil {
				h.log.Error().Err(err).Str("file", path).Msg("stale temp file removal failed")
				continue
			}
			h.log.Info().Str("file", path).Msg("removed stale temp file")
		}
	}
	return nil
}

func (h *TaskHandler) download(ctx context.Context, fileID, dest string) error {
	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch file: unexpected status %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (h *TaskHandler) sendSharePrompt(p tasks.TranscodeTaskPayload, token string) error {
	yesData, err := payload.Encode(payload.ActionShareYes, payload.Truncate(token, h.tokLen), 0)
	if err != nil {
		return err
	}
	noData, err := payload.Encode(payload.ActionShareNo, "", 0)
	if err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		p.ChatID, p.ProgressMessageID,
		i18n.T(p.Language, "video_saved"),
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T(p.Language, "share_yes"), yesData),
				tgbotapi.NewInlineKeyboardButtonData(i18n.T(p.Language, "share_no"), noData),
			),
		),
	)
	_, err = h.api.Send(edit)
	return err
}

// fail tells the submitter processing broke and stops asynq from
// retrying: the user was already asked to resend, a retry would duplicate
// the conversation.
func (h *TaskHandler) fail(p tasks.TranscodeTaskPayload, cause error) error {
	edit := tgbotapi.NewEditMessageText(p.ChatID, p.ProgressMessageID, i18n.T(p.Language, "processing_error"))
	if _, err := h.api.Send(edit); err != nil {
		h.log.Error().Err(err).Int64("chat_id", p.ChatID).Msg("failure notice delivery failed")
	}
	return fmt.Errorf("transcode task: %v: %w", cause, asynq.SkipRetry)
}
