package simulation

import (
	"testing"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/vec"
)

const testTickMs = 1000.0 / 60.0

func newTestState(t *testing.T) *simState {
	t.Helper()
	return newSimState(DefaultConfig(), DefaultOpponent, nil)
}

// park moves every player out of the way: home along the top touchline on
// the left, away along the bottom touchline on the right.
func park(s *simState) {
	for i, p := range s.match.Home.Players {
		p.Pos = vec.New(-50+4*float64(i), 38)
		p.Vel = vec.Vec2{}
	}
	for i, p := range s.match.Away.Players {
		p.Pos = vec.New(50-4*float64(i), -38)
		p.Vel = vec.Vec2{}
	}
}

func homeForward(s *simState) *Player {
	return s.match.Home.Players[3]
}

func awayForward(s *simState) *Player {
	return s.match.Away.Players[3]
}

// checkInvariants fails the test when ball ownership and possession disagree.
func checkInvariants(t *testing.T, s *simState) {
	t.Helper()
	m := s.match
	holders := 0
	for _, p := range m.AllPlayers() {
		if p.HasBall {
			holders++
			if m.Ball.OwnerID != p.ID {
				t.Fatalf("tick %d: %s has ball flag but owner=%q", s.tick, p.ID, m.Ball.OwnerID)
			}
		}
	}
	if m.Ball.Free() {
		if holders != 0 || m.Possession != nil {
			t.Fatalf("tick %d: free ball with holders=%d possession=%+v", s.tick, holders, m.Possession)
		}
		return
	}
	owner := m.Player(m.Ball.OwnerID)
	if owner == nil {
		t.Fatalf("tick %d: owner %q does not exist", s.tick, m.Ball.OwnerID)
	}
	if holders != 1 {
		t.Fatalf("tick %d: expected exactly one holder, got=%d", s.tick, holders)
	}
	if m.Possession == nil || m.Possession.PlayerID != owner.ID || m.Possession.TeamID != owner.TeamID {
		t.Fatalf("tick %d: possession %+v does not match owner %s", s.tick, m.Possession, owner.ID)
	}
}

// stepHeld steps n ticks with the same holds, clearing edges after each step
// the way a host does.
func stepHeld(e *Engine, n int, in input.Snapshot) []Event {
	var events []Event
	for range n {
		events = append(events, e.Step(testTickMs, in)...)
		in.ClearEdges()
	}
	return events
}
