/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package werewolf

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// MaxNameLength bounds display names, in runes.
const MaxNameLength = 24

var errNotInRoom = &Error{Kind: KindRoomNotFound, Message: "You are not in a room."}

// ConnID identifies one live client connection.
type ConnID string

// Player is a member of a room.
type Player struct {
	ConnID ConnID
	ID     string // stable across reconnects, supplied by the client
	Name   string
	Role   Role
}

// Room is a game session. Values handed out by the Registry are copies.
type Room struct {
	Code          string
	Members       []Player
	RolesAssigned bool
	GameStarted   bool
	CreatedAt     time.Time
}

func (r *Room) clone() Room {
	c := *r
	c.Members = append([]Player(nil), r.Members...)
	return c
}

func (r *Room) indexOf(conn ConnID) int {
	for i, p := range r.Members {
		if p.ConnID == conn {
			return i
		}
	}
	return -1
}

// Registry is the table of live rooms. It keeps a reverse index from
// connection to room code alongside the rooms themselves; both are only
// ever changed together under mu.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	byConn map[ConnID]string

	newCode  func() string
	assigner *Assigner
	log      zerolog.Logger
}

type RegistryOption func(*Registry)

// WithCodeGenerator replaces the random room code source.
func WithCodeGenerator(gen func() string) RegistryOption {
	return func(r *Registry) {
		r.newCode = gen
	}
}

// WithAssigner replaces the role assigner used by Start.
func WithAssigner(a *Assigner) RegistryOption {
	return func(r *Registry) {
		r.assigner = a
	}
}

func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = l
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:    make(map[string]*Room),
		byConn:   make(map[ConnID]string),
		newCode:  NewCodeGenerator(DefaultCodeLength),
		assigner: NewAssigner(),
		log:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.log = r.log.With().Str("module", "werewolf.registry").Logger()

	return r
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("Please enter a name.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", invalidInput("Names can be at most %d characters long.", MaxNameLength)
	}
	return name, nil
}

func newPlayer(conn ConnID, id, name string) Player {
	id = strings.TrimSpace(id)
	if id == "" {
		id = string(conn)
	}
	return Player{ConnID: conn, ID: id, Name: name}
}

// uniqueCodeLocked draws codes until one is not in use.
func (r *Registry) uniqueCodeLocked() string {
	for {
		code := r.newCode()
		if _, exists := r.rooms[code]; !exists {
			return code
		}
		r.log.Debug().Str("room", code).Msg("room code collision, regenerating")
	}
}

// CreateRoom opens a new room with the caller as its only member.
func (r *Registry) CreateRoom(conn ConnID, id, name string) (Room, error) {
	name, err := cleanName(name)
	if err != nil {
		return Room{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.byConn[conn]; ok {
		return Room{}, invalidInput("You are already in room %s.", code)
	}

	room := &Room{
		Code:      r.uniqueCodeLocked(),
		Members:   []Player{newPlayer(conn, id, name)},
		CreatedAt: time.Now(),
	}
	r.rooms[room.Code] = room
	r.byConn[conn] = room.Code

	r.log.Info().Str("room", room.Code).Str("conn", string(conn)).Str("name", name).Msg("created room")

	return room.clone(), nil
}

// JoinRoom adds the caller to the room with the given code. Codes are
// matched case-insensitively.
func (r *Registry) JoinRoom(code string, conn ConnID, id, name string) (Room, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Room{}, invalidInput("Please enter a room code.")
	}

	name, err := cleanName(name)
	if err != nil {
		return Room{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if room.GameStarted {
		return Room{}, ErrGameAlreadyStarted
	}
	if current, ok := r.byConn[conn]; ok {
		return Room{}, invalidInput("You are already in room %s.", current)
	}

	room.Members = append(room.Members, newPlayer(conn, id, name))
	r.byConn[conn] = code

	r.log.Info().Str("room", code).Str("conn", string(conn)).Str("name", name).Int("members", len(room.Members)).Msg("player joined")

	return room.clone(), nil
}

// Leave removes the connection from its room, deleting the room if it is
// now empty. It returns the room as it stands afterwards and the departed
// player; ok is false if the connection was not in a room.
func (r *Registry) Leave(conn ConnID) (room Room, left Player, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.byConn[conn]
	if !ok {
		return Room{}, Player{}, false
	}
	delete(r.byConn, conn)

	rm, ok := r.rooms[code]
	if !ok {
		return Room{}, Player{}, false
	}

	i := rm.indexOf(conn)
	if i < 0 {
		return Room{}, Player{}, false
	}
	left = rm.Members[i]
	rm.Members = append(rm.Members[:i], rm.Members[i+1:]...)

	r.log.Info().Str("room", code).Str("conn", string(conn)).Int("members", len(rm.Members)).Msg("player left")

	if len(rm.Members) == 0 {
		delete(r.rooms, code)
		r.log.Info().Str("room", code).Msg("deleted empty room")
	}

	return rm.clone(), left, true
}

// Start assigns roles in the caller's room and marks the game started. The
// flags and every role change together or not at all.
func (r *Registry) Start(conn ConnID) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.byConn[conn]
	if !ok {
		return Room{}, errNotInRoom
	}

	room, ok := r.rooms[code]
	if !ok {
		return Room{}, errNotInRoom
	}
	if room.GameStarted || room.RolesAssigned {
		return Room{}, ErrAlreadyStarted
	}

	dealt := append([]Player(nil), room.Members...)
	if err := r.assigner.Assign(dealt); err != nil {
		return Room{}, err
	}

	room.Members = dealt
	room.RolesAssigned = true
	room.GameStarted = true

	r.log.Info().Str("room", code).Int("members", len(dealt)).Msg("game started")

	return room.clone(), nil
}

// RoomOf returns the room the connection belongs to.
func (r *Registry) RoomOf(conn ConnID) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.byConn[conn]
	if !ok {
		return Room{}, false
	}
	room, ok := r.rooms[code]
	if !ok {
		return Room{}, false
	}
	return room.clone(), true
}

// Lookup returns the room with the given code, matched case-insensitively.
func (r *Registry) Lookup(code string) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return Room{}, false
	}
	return room.clone(), true
}

// Len reports the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
