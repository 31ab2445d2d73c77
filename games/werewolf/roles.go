/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package werewolf

import "math/rand/v2"

// Role is the hidden label bound to a player at game start.
type Role string

const (
	RoleNone      Role = ""
	RoleWolf      Role = "Wolf"
	RoleDetective Role = "Detective"
	RoleDoctor    Role = "Doctor"
	RoleVillager  Role = "Villager"
)

// MinPlayers is the smallest room that can be started.
const MinPlayers = 5

// RolePool returns the unshuffled roles for n players.
//
// The special roles are fixed at two wolves, one detective and one doctor no
// matter how large the room grows; every additional player is a villager.
// This is the game's balance policy, not an oversight.
func RolePool(n int) []Role {
	if n < MinPlayers {
		return nil
	}

	roles := make([]Role, 0, n)
	roles = append(roles, RoleWolf, RoleWolf, RoleDetective, RoleDoctor)
	for len(roles) < n {
		roles = append(roles, RoleVillager)
	}

	return roles
}

// Assigner deals roles to players.
type Assigner struct {
	// IntN returns a uniform value in [0, n).
	IntN func(n int) int
}

// NewAssigner returns an Assigner backed by the runtime's random source.
func NewAssigner() *Assigner {
	return &Assigner{IntN: rand.IntN}
}

// Shuffle permutes roles in place with Fisher-Yates, so every ordering of the
// multiset is equally likely.
func (a *Assigner) Shuffle(roles []Role) {
	for i := len(roles) - 1; i > 0; i-- {
		j := a.IntN(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
}

// Assign binds one role to every player, in member order. With fewer than
// MinPlayers players it returns an insufficient-players error and leaves
// every role untouched.
func (a *Assigner) Assign(players []Player) error {
	roles := RolePool(len(players))
	if roles == nil {
		return insufficientPlayers(len(players))
	}

	a.Shuffle(roles)

	for i := range players {
		players[i].Role = roles[i]
	}

	return nil
}
