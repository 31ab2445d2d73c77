package werewolf

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{
			ConnID: ConnID(string(rune('a' + i))),
			ID:     string(rune('A' + i)),
			Name:   string(rune('A' + i)),
		}
	}
	return players
}

func countRoles(players []Player) map[Role]int {
	counts := make(map[Role]int)
	for _, p := range players {
		counts[p.Role]++
	}
	return counts
}

func seededAssigner(seed uint64) *Assigner {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Assigner{IntN: r.IntN}
}

func TestRolePool(t *testing.T) {
	tests := []struct {
		name      string
		players   int
		villagers int
	}{
		{name: "minimum", players: 5, villagers: 1},
		{name: "six", players: 6, villagers: 2},
		{name: "large room keeps special roles fixed", players: 20, villagers: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := RolePool(tt.players)
			require.Len(t, pool, tt.players)

			counts := make(map[Role]int)
			for _, r := range pool {
				counts[r]++
			}
			assert.Equal(t, 2, counts[RoleWolf])
			assert.Equal(t, 1, counts[RoleDetective])
			assert.Equal(t, 1, counts[RoleDoctor])
			assert.Equal(t, tt.villagers, counts[RoleVillager])
		})
	}

	assert.Nil(t, RolePool(4))
	assert.Nil(t, RolePool(0))
}

func TestAssignInsufficientPlayers(t *testing.T) {
	for n := 0; n < MinPlayers; n++ {
		players := makePlayers(n)

		err := NewAssigner().Assign(players)
		require.ErrorIs(t, err, ErrInsufficientPlayers)

		for _, p := range players {
			assert.Equal(t, RoleNone, p.Role, "player %s was dealt a role", p.Name)
		}
	}
}

func TestAssignFivePlayers(t *testing.T) {
	a := seededAssigner(7)

	for range 200 {
		players := makePlayers(5)
		require.NoError(t, a.Assign(players))

		assert.Equal(t, map[Role]int{
			RoleWolf:      2,
			RoleDetective: 1,
			RoleDoctor:    1,
			RoleVillager:  1,
		}, countRoles(players))
	}
}

func TestAssignKeepsPlayerOrder(t *testing.T) {
	a := &Assigner{IntN: func(int) int { return 0 }}

	players := makePlayers(5)
	require.NoError(t, a.Assign(players))

	// With j always 0, Fisher-Yates rotates [W W D Doc V] into [W D Doc V W].
	want := []Role{RoleWolf, RoleDetective, RoleDoctor, RoleVillager, RoleWolf}
	for i, p := range players {
		assert.Equal(t, string(rune('A'+i)), p.Name)
		assert.Equal(t, want[i], p.Role)
	}
}

func TestAssignWolfDistributionIsUniform(t *testing.T) {
	const (
		trials  = 5000
		players = 5
		// Chi-square critical value, 4 degrees of freedom, p = 0.001.
		critical = 18.467
	)

	a := seededAssigner(42)
	wolves := make([]int, players)

	for range trials {
		ps := makePlayers(players)
		require.NoError(t, a.Assign(ps))
		for i, p := range ps {
			if p.Role == RoleWolf {
				wolves[i]++
			}
		}
	}

	expected := float64(trials) * 2 / players
	var chi2 float64
	for _, observed := range wolves {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}

	assert.Less(t, chi2, critical, "wolf counts per seat %v are not uniform (chi2 = %.2f)", wolves, chi2)
}

func TestShuffleVisitsEveryOrdering(t *testing.T) {
	a := seededAssigner(3)
	seen := make(map[[3]Role]int)

	for range 3000 {
		roles := []Role{RoleWolf, RoleDetective, RoleDoctor}
		a.Shuffle(roles)
		seen[[3]Role(roles)]++
	}

	require.Len(t, seen, 6)
	for perm, n := range seen {
		assert.InDelta(t, 500, n, 100, "ordering %v", perm)
	}
}
