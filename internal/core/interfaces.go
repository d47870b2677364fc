package core

import (
	"context"
	"errors"

	"github.com/horlas08/awals-backend/internal/domain"
)

// Frame is one raw wire frame (a single JSON object, no framing beyond
// the websocket message boundary).
type Frame []byte

// ConnID identifies one live transport session for its lifetime.
type ConnID string

var (
	ErrBackpressure    = errors.New("backpressure")
	ErrConnClosed      = errors.New("connection closed")
	ErrInvalidToken    = errors.New("invalid token")
	ErrBookingNotFound = errors.New("booking not found")
)

// Conn is the outbound half of a live connection.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}

// TokenVerifier maps an opaque credential to a user identity.
// Verification may involve external I/O and must complete before any
// connection state changes.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.UserID, error)
}

// Participants is the identity set allowed into a booking's room.
// Host is empty when the booking has no place listing to resolve it from.
type Participants struct {
	Guest domain.UserID
	Host  domain.UserID
}

func (p Participants) Contains(id domain.UserID) bool {
	if id == "" {
		return false
	}
	return id == p.Guest || id == p.Host
}

// BookingAuthorizer resolves who may join a booking's room.
type BookingAuthorizer interface {
	ResolveParticipants(ctx context.Context, id domain.BookingID) (Participants, error)
}
