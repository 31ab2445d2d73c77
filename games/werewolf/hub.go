/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package werewolf

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Notifier delivers outbound messages to a single connection. Send must not
// block; a message that cannot be delivered is dropped.
type Notifier interface {
	Send(conn ConnID, msg any)
}

type intent struct {
	conn       ConnID
	msg        ClientMessage
	disconnect bool
}

// Hub drives the room state machine. Intents submitted from any goroutine
// are processed one at a time by Run, each to completion (registry change
// and every resulting notification) before the next one starts.
type Hub struct {
	registry *Registry
	notifier Notifier
	log      zerolog.Logger

	intents chan intent
	done    chan struct{}
}

func NewHub(registry *Registry, notifier Notifier, logger zerolog.Logger) *Hub {
	return &Hub{
		registry: registry,
		notifier: notifier,
		log:      logger.With().Str("module", "werewolf.hub").Logger(),
		intents:  make(chan intent, 64),
		done:     make(chan struct{}),
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run processes intents until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case in := <-h.intents:
			if in.disconnect {
				h.HandleDisconnect(in.conn)
			} else {
				h.Handle(in.conn, in.msg)
			}
		}
	}
}

// Submit queues a client message. It reports false once Run has returned.
func (h *Hub) Submit(conn ConnID, msg ClientMessage) bool {
	return h.enqueue(intent{conn: conn, msg: msg})
}

// Disconnect queues the implicit leave of a closed connection.
func (h *Hub) Disconnect(conn ConnID) bool {
	return h.enqueue(intent{conn: conn, disconnect: true})
}

func (h *Hub) enqueue(in intent) bool {
	select {
	case h.intents <- in:
		return true
	case <-h.done:
		return false
	}
}

// Handle processes one client message synchronously. Callers other than Run
// must not use it concurrently with Run.
func (h *Hub) Handle(conn ConnID, msg ClientMessage) {
	switch msg.Type {
	case TypeCreateRoom:
		h.handleCreate(conn, msg)
	case TypeJoinRoom:
		h.handleJoin(conn, msg)
	case TypeStartGame:
		h.handleStart(conn)
	default:
		h.reject(conn, invalidInput("Unknown request %q.", msg.Type))
	}
}

// HandleDisconnect removes a closed connection from its room, whatever the
// room's state.
func (h *Hub) HandleDisconnect(conn ConnID) {
	room, left, ok := h.registry.Leave(conn)
	if !ok {
		return
	}

	h.broadcast(room, PlayerLeftMessage{
		Type:     TypePlayerLeft,
		PlayerID: left.ID,
		Players:  playerViews(room.Members),
	})
}

func (h *Hub) handleCreate(conn ConnID, msg ClientMessage) {
	room, err := h.registry.CreateRoom(conn, msg.PlayerID, msg.Name)
	if err != nil {
		h.reject(conn, err)
		return
	}

	h.notifier.Send(conn, RoomCreatedMessage{
		Type:    TypeRoomCreated,
		Code:    room.Code,
		Players: playerViews(room.Members),
	})
}

func (h *Hub) handleJoin(conn ConnID, msg ClientMessage) {
	room, err := h.registry.JoinRoom(msg.Code, conn, msg.PlayerID, msg.Name)
	if err != nil {
		h.reject(conn, err)
		return
	}

	joined := room.Members[len(room.Members)-1]

	h.broadcast(room, PlayerJoinedMessage{
		Type:    TypePlayerJoined,
		Name:    joined.Name,
		Players: playerViews(room.Members),
	})
}

func (h *Hub) handleStart(conn ConnID) {
	room, err := h.registry.Start(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}

	h.broadcast(room, GameStartedMessage{Type: TypeGameStarted})

	for _, p := range room.Members {
		h.notifier.Send(p.ConnID, YourRoleMessage{
			Type: TypeYourRole,
			Role: p.Role,
		})
	}
}

func (h *Hub) broadcast(room Room, msg any) {
	for _, p := range room.Members {
		h.notifier.Send(p.ConnID, msg)
	}
}

// reject reports err to conn alone.
func (h *Hub) reject(conn ConnID, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrInvalidInput
		h.log.Error().Err(err).Str("conn", string(conn)).Msg("unexpected error handling intent")
	}

	h.log.Debug().Str("conn", string(conn)).Str("kind", string(e.Kind)).Msg("rejected intent")

	h.notifier.Send(conn, ErrorMessage{
		Type:    TypeError,
		Kind:    e.Kind,
		Message: e.Message,
	})
}
