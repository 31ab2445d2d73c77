/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package werewolf

import "fmt"

// Kind identifies a class of rejected intent. It is sent to clients verbatim.
type Kind string

const (
	KindRoomNotFound        Kind = "room_not_found"
	KindGameAlreadyStarted  Kind = "game_already_started"
	KindInsufficientPlayers Kind = "insufficient_players"
	KindAlreadyStarted      Kind = "already_started"
	KindInvalidInput        Kind = "invalid_input"
)

// Error is a user-correctable rejection. Message is shown to the player.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on Kind, so errors.Is(err, ErrInsufficientPlayers) holds for
// any insufficient-players error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrRoomNotFound        = &Error{Kind: KindRoomNotFound, Message: "That room does not exist, or the code is incorrect."}
	ErrGameAlreadyStarted  = &Error{Kind: KindGameAlreadyStarted, Message: "The game in this room has already started."}
	ErrInsufficientPlayers = &Error{Kind: KindInsufficientPlayers, Message: fmt.Sprintf("At least %d players are needed to start the game.", MinPlayers)}
	ErrAlreadyStarted      = &Error{Kind: KindAlreadyStarted, Message: "Roles have already been assigned in this room."}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "Invalid request."}
)

func insufficientPlayers(have int) *Error {
	return &Error{
		Kind:    KindInsufficientPlayers,
		Message: fmt.Sprintf("At least %d players are needed to start the game (currently %d).", MinPlayers, have),
	}
}

func invalidInput(format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}
