package core

import "github.com/horlas08/awals-backend/internal/domain"

// Inbound frame tags.
const (
	TypeAuth    = "auth"
	TypeJoin    = "joinBooking"
	TypeMessage = "message"
)

// Outbound event tags.
const (
	TypeAuthOK    = "auth_ok"
	TypeAuthError = "auth_error"
	TypeJoined    = "joined"
	TypeError     = "error"
)

// Envelope is the minimal decode used to dispatch on the frame tag.
type Envelope struct {
	Type string `json:"type"`
}

type AuthFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type JoinFrame struct {
	Type      string           `json:"type"`
	BookingID domain.BookingID `json:"bookingId"`
}

type MessageFrame struct {
	Type      string           `json:"type"`
	BookingID domain.BookingID `json:"bookingId"`
	Text      string           `json:"text"`
}

// ChatPayload is the body of a fanned-out chat message.
type ChatPayload struct {
	From      domain.UserID    `json:"from"`
	BookingID domain.BookingID `json:"bookingId"`
	Text      string           `json:"text"`
	Time      string           `json:"time"`
}

// Event is an outbound frame. Optional fields are omitted so each tag
// serializes to exactly its wire shape.
type Event struct {
	Type      string           `json:"type"`
	BookingID domain.BookingID `json:"bookingId,omitempty"`
	Error     string           `json:"error,omitempty"`
	Payload   *ChatPayload     `json:"payload,omitempty"`
}
