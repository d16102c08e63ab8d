// Package payload encodes and decodes inline-keyboard callback data. The
// platform caps callback data at 64 bytes, which is why tokens travel
// truncated while full tokens stay server-side.
package payload

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxLen is the platform's callback-data byte ceiling.
const MaxLen = 64

// Known actions. Single-letter prefixes keep the richest payload
// (action_token_userid) comfortably under MaxLen.
const (
	ActionShareYes = "sy"
	ActionShareNo  = "sn"
	ActionPublish  = "p"
	ActionReject   = "r"
)

// Payload is a decoded callback.
type Payload struct {
	Action string
	Token  string
	UserID int64
}

// Truncate shortens a token for embedding in callback data.
func Truncate(token string, n int) string {
	if len(token) > n {
		return token[:n]
	}
	return token
}

// Encode builds `action_token[_userid]` callback data. A zero userID is
// omitted. Returns an error instead of silently exceeding the platform
// limit.
func Encode(action, token string, userID int64) (string, error) {
	var b strings.Builder
	b.WriteString(action)
	if token != "" {
		b.WriteByte('_')
		b.WriteString(token)
	}
	if userID != 0 {
		b.WriteByte('_')
		b.WriteString(strconv.FormatInt(userID, 10))
	}
	if b.Len() > MaxLen {
		return "", fmt.Errorf("callback payload %q exceeds %d bytes", b.String(), MaxLen)
	}
	return b.String(), nil
}

// Decode parses `action_token[_userid]` callback data.
func Decode(data string) (Payload, error) {
	parts := strings.Split(data, "_")
	p := Payload{Action: parts[0]}
	if len(parts) > 1 {
		p.Token = parts[1]
	}
	if len(parts) > 2 {
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Payload{}, fmt.Errorf("malformed callback %q: %w", data, err)
		}
		p.UserID = id
	}
	return p, nil
}
