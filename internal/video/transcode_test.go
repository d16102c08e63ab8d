package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropWindow(t *testing.T) {
	// 1920×1080: half-side 540 around center (960,540) ⇒ x∈[420,1500], y∈[0,1080].
	side, x, y := cropWindow(1920, 1080)
	assert.Equal(t, 1080, side)
	assert.Equal(t, 420, x)
	assert.Equal(t, 0, y)

	// Portrait input crops on the vertical axis.
	side, x, y = cropWindow(720, 1280)
	assert.Equal(t, 720, side)
	assert.Equal(t, 0, x)
	assert.Equal(t, 280, y)

	side, x, y = cropWindow(640, 640)
	assert.Equal(t, 640, side)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

func TestBuildFilter(t *testing.T) {
	// Square at or under the cap needs no filtering at all.
	assert.Equal(t, "", buildFilter(640, 640, 640))
	assert.Equal(t, "", buildFilter(480, 480, 640))

	// Square above the cap is only scaled.
	assert.Equal(t, "scale=640:640", buildFilter(1080, 1080, 640))

	// Non-square above the cap is cropped then scaled.
	assert.Equal(t, "crop=1080:1080:420:0,scale=640:640", buildFilter(1920, 1080, 640))

	// Non-square under the cap is cropped but not upscaled.
	assert.Equal(t, "crop=480:480:80:0", buildFilter(640, 480, 640))
}

func TestProbe(t *testing.T) {
	originalExec := execCommandContext
	defer func() { execCommandContext = originalExec }()
	execCommandContext = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "PROBE_ARGS=" + strings.Join(arg, " ")}
		return cmd
	}

	tr := NewTranscoder(640, zerolog.Nop())
	w, h, err := tr.Probe(context.Background(), "input.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestProbeNoVideoStream(t *testing.T) {
	originalExec := execCommandContext
	defer func() { execCommandContext = originalExec }()
	execCommandContext = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "PROBE_EMPTY=1"}
		return cmd
	}

	tr := NewTranscoder(640, zerolog.Nop())
	_, _, err := tr.Probe(context.Background(), "input.mp4")
	assert.Error(t, err)
}

// TestHelperProcess isn't a real test. It stands in for ffprobe in tests
// that swap execCommandContext.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if os.Getenv("PROBE_EMPTY") == "1" {
		fmt.Println(`{"streams": []}`)
		os.Exit(0)
	}

	fmt.Println(`{"streams": [{"width": 1920, "height": 1080}]}`)
	os.Exit(0)
}
