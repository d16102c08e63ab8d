package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeTranscode = "circle:transcode"
	TypeTempSweep = "temp:sweep"
)

// TranscodeTaskPayload carries everything the worker needs to process one
// submitted video and report back into the submitter's chat.
type TranscodeTaskPayload struct {
	ChatID            int64
	UserID            int64
	FileID            string
	Language          string
	ProgressMessageID int
}

func NewTranscodeTask(p TranscodeTaskPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTranscode, payload), nil
}

// NewTempSweepTask builds the periodic temp-directory cleanup task.
func NewTempSweepTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeTempSweep, nil), nil
}
