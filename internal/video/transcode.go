package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

var execCommandContext = exec.CommandContext

// Transcoder produces square, capped-dimension clips suitable for circle
// playback by shelling out to ffprobe/ffmpeg. It holds no per-job state;
// bounding concurrency is the worker pool's job, not this type's.
type Transcoder struct {
	// TargetSide caps the output dimensions. Inputs whose cropped side is
	// already at or below the cap are not upscaled.
	TargetSide int
	log        zerolog.Logger
}

func NewTranscoder(targetSide int, log zerolog.Logger) *Transcoder {
	return &Transcoder{TargetSide: targetSide, log: log}
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

// Probe reads the dimensions of the first video stream.
func (t *Transcoder) Probe(ctx context.Context, path string) (width, height int, err error) {
	cmd := execCommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(out)))
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 || probed.Streams[0].Width == 0 || probed.Streams[0].Height == 0 {
		return 0, 0, fmt.Errorf("no video stream in %s", path)
	}
	return probed.Streams[0].Width, probed.Streams[0].Height, nil
}

// Process converts input into a square clip at output. Non-square inputs
// are center-cropped to side=min(w,h); sides above TargetSide are scaled
// down to it. The encode uses a latency-optimized preset and a pixel
// format every client can play.
func (t *Transcoder) Process(ctx context.Context, input, output string) error {
	width, height, err := t.Probe(ctx, input)
	if err != nil {
		return err
	}

	filter := buildFilter(width, height, t.TargetSide)

	args := []string{"-y", "-i", input}
	if filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		output,
	)

	cmd := execCommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.log.Error().Err(err).Str("input", input).Str("output", string(out)).Msg("ffmpeg failed")
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// cropWindow returns the square crop for a w×h frame: side length and the
// top-left corner of a window centered on the frame center.
func cropWindow(w, h int) (side, x, y int) {
	side = w
	if h < w {
		side = h
	}
	return side, (w - side) / 2, (h - side) / 2
}

// buildFilter assembles the ffmpeg -vf chain. Empty when the input is
// already square and within the cap.
func buildFilter(w, h, cap int) string {
	var filters []string

	side, x, y := cropWindow(w, h)
	if w != h {
		filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:%d", side, side, x, y))
	}
	if side > cap {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", cap, cap))
	}
	return strings.Join(filters, ",")
}
