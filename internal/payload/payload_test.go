package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := Encode(ActionPublish, "abc123", 1340988413)
	require.NoError(t, err)
	assert.Equal(t, "p_abc123_1340988413", data)

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ActionPublish, p.Action)
	assert.Equal(t, "abc123", p.Token)
	assert.Equal(t, int64(1340988413), p.UserID)
}

func TestEncodeWithoutUserID(t *testing.T) {
	data, err := Encode(ActionShareYes, "abc123", 0)
	require.NoError(t, err)
	assert.Equal(t, "sy_abc123", data)

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ActionShareYes, p.Action)
	assert.Equal(t, "abc123", p.Token)
	assert.Zero(t, p.UserID)
}

func TestRichestPayloadStaysUnderLimit(t *testing.T) {
	// Worst case: single-letter action, truncated token, maximal user id.
	data, err := Encode(ActionReject, Truncate("abcdef123456", 6), 9223372036854775807)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), MaxLen)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	long := make([]byte, 70)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Encode(ActionShareYes, string(long), 0)
	assert.Error(t, err)
}

func TestDecodeMalformedUserID(t *testing.T) {
	_, err := Decode("p_abc123_notanumber")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc123", Truncate("abc123xy", 6))
	assert.Equal(t, "ab", Truncate("ab", 6))
}
