package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkolot/telegram-subscription-bot/internal/video"
	"github.com/maxkolot/telegram-subscription-bot/pkg/tasks"
)

type fakeAPI struct {
	sent    []tgbotapi.Chattable
	fileErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 1}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileErr != nil {
		return "", f.fileErr
	}
	return "http://127.0.0.1:0/file", nil
}

type fakeTokens struct{}

func (fakeTokens) Put(ctx context.Context, fileID string, userID int64) (string, error) {
	return "abc123xy", nil
}

func TestHandleTranscodeTaskDownloadFailure(t *testing.T) {
	api := &fakeAPI{fileErr: errors.New("file not found")}
	h := NewTaskHandler(api, fakeTokens{}, video.NewTranscoder(640, zerolog.Nop()), t.TempDir(), 6, zerolog.Nop())

	payload, err := json.Marshal(tasks.TranscodeTaskPayload{
		ChatID: 42, UserID: 42, FileID: "bad", Language: "en", ProgressMessageID: 7,
	})
	require.NoError(t, err)
	task := asynq.NewTask(tasks.TypeTranscode, payload)

	err = h.HandleTranscodeTask(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry, "processing failures must not be retried behind the user's back")

	// The progress message was edited to the failure notice.
	require.Len(t, api.sent, 1)
	_, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	assert.True(t, ok)
}

func TestHandleTempSweepTask(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "input_1_1.mp4")
	fresh := filepath.Join(dir, "output_2_2.mp4")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	h := NewTaskHandler(&fakeAPI{}, fakeTokens{}, video.NewTranscoder(640, zerolog.Nop()), dir, 6, zerolog.Nop())

	err := h.HandleTempSweepTask(context.Background(), asynq.NewTask(tasks.TypeTempSweep, nil))
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale temp file should be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh temp file should survive")
}

func TestHandleTempSweepTaskMissingDir(t *testing.T) {
	h := NewTaskHandler(&fakeAPI{}, fakeTokens{}, video.NewTranscoder(640, zerolog.Nop()),
		filepath.Join(t.TempDir(), "nope"), 6, zerolog.Nop())

	err := h.HandleTempSweepTask(context.Background(), asynq.NewTask(tasks.TypeTempSweep, nil))
	assert.NoError(t, err)
}
