package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each event tag must serialize to exactly its wire shape: optional fields
// are dropped, never null.
func TestEvent_WireShapes(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "auth_ok carries only its tag",
			ev:   Event{Type: TypeAuthOK},
			want: `{"type":"auth_ok"}`,
		},
		{
			name: "auth_error",
			ev:   Event{Type: TypeAuthError, Error: "invalid token"},
			want: `{"type":"auth_error","error":"invalid token"}`,
		},
		{
			name: "joined",
			ev:   Event{Type: TypeJoined, BookingID: "b1"},
			want: `{"type":"joined","bookingId":"b1"}`,
		},
		{
			name: "message wraps its payload",
			ev: Event{Type: TypeMessage, Payload: &ChatPayload{
				From: "u1", BookingID: "b1", Text: "hi", Time: "2026-02-14T12:00:00Z",
			}},
			want: `{"type":"message","payload":{"from":"u1","bookingId":"b1","text":"hi","time":"2026-02-14T12:00:00Z"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}
