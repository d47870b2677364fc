package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/horlas08/awals-backend/internal/core"
)

// Engine runs the per-connection protocol: auth, then join, then chat
// fan-out. Connection state lives in the registry and only changes after
// the collaborator call for the transition has returned.
type Engine struct {
	Registry   *Registry
	Verifier   core.TokenVerifier
	Authorizer core.BookingAuthorizer

	now func() time.Time
}

func NewEngine(reg *Registry, v core.TokenVerifier, a core.BookingAuthorizer) *Engine {
	return &Engine{
		Registry:   reg,
		Verifier:   v,
		Authorizer: a,
		now:        time.Now,
	}
}

// HandleFrame dispatches one inbound frame. Malformed frames and unknown
// tags are logged and dropped; they never close the connection.
func (e *Engine) HandleFrame(ctx context.Context, id core.ConnID, conn core.Conn, data core.Frame) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(id)).Msg("bad frame")
		return
	}

	switch env.Type {
	case core.TypeAuth:
		e.handleAuth(ctx, id, conn, data)
	case core.TypeJoin:
		e.handleJoin(ctx, id, conn, data)
	case core.TypeMessage:
		e.handleMessage(id, data)
	default:
		log.Warn().Str("module", "app.engine").Str("cid", string(id)).Str("type", env.Type).Msg("unknown frame type")
	}
}

// OnDisconnect removes the connection from the registry and thereby from
// any room membership view. Called by the transport adapter exactly once.
func (e *Engine) OnDisconnect(id core.ConnID) {
	e.Registry.Unregister(id)
}

func (e *Engine) handleAuth(ctx context.Context, id core.ConnID, conn core.Conn, data core.Frame) {
	var f core.AuthFrame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(id)).Msg("bad auth payload")
		return
	}

	uid, err := e.Verifier.Verify(ctx, f.Token)
	if err != nil {
		// Never tell the client why verification failed.
		log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(id)).Msg("auth failed")
		e.send(id, conn, core.Event{Type: core.TypeAuthError, Error: "invalid token"})
		conn.Close()
		return
	}

	e.Registry.Authenticate(id, uid)
	e.send(id, conn, core.Event{Type: core.TypeAuthOK})
}

func (e *Engine) handleJoin(ctx context.Context, id core.ConnID, conn core.Conn, data core.Frame) {
	var f core.JoinFrame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(id)).Msg("bad join payload")
		return
	}

	uid, ok := e.Registry.UserOf(id)
	if !ok {
		e.send(id, conn, core.Event{Type: core.TypeError, Error: "not authenticated"})
		return
	}

	parts, err := e.Authorizer.ResolveParticipants(ctx, f.BookingID)
	if err != nil {
		if errors.Is(err, core.ErrBookingNotFound) {
			e.send(id, conn, core.Event{Type: core.TypeError, Error: "booking not found"})
			return
		}
		log.Error().Err(err).Str("module", "app.engine").Str("cid", string(id)).Str("booking", string(f.BookingID)).Msg("resolve participants")
		return
	}
	if !parts.Contains(uid) {
		e.send(id, conn, core.Event{Type: core.TypeError, Error: "not allowed to join this chat"})
		return
	}

	e.Registry.BindRoom(id, f.BookingID)
	e.send(id, conn, core.Event{Type: core.TypeJoined, BookingID: f.BookingID})
}

func (e *Engine) handleMessage(id core.ConnID, data core.Frame) {
	var f core.MessageFrame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(id)).Msg("bad message payload")
		return
	}

	// Best-effort: unauthenticated or unjoined senders and empty texts are
	// dropped without a response.
	uid, ok := e.Registry.UserOf(id)
	if !ok {
		return
	}
	room, ok := e.Registry.RoomOf(id)
	if !ok {
		return
	}
	if f.Text == "" {
		return
	}

	ev := core.Event{
		Type: core.TypeMessage,
		Payload: &core.ChatPayload{
			From:      uid,
			BookingID: room,
			Text:      f.Text,
			Time:      e.now().UTC().Format(time.RFC3339),
		},
	}
	frame, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.engine").Msg("marshal message event")
		return
	}

	members := e.Registry.MembersOf(room)
	for _, m := range members {
		// A peer closing mid-broadcast must not abort delivery to the rest.
		if err := m.Conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(m.ID)).Msg("fan-out send dropped")
		}
	}
	log.Debug().Str("module", "app.engine").Str("room", string(room)).Int("members", len(members)).Msg("fan-out")
}

func (e *Engine) send(id core.ConnID, conn core.Conn, ev core.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.engine").Msg("marshal event")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "app.engine").Str("cid", string(id)).Str("type", ev.Type).Msg("send dropped")
	}
}
