package simulation

import (
	"fmt"
	"math"
	"strings"

	"github.com/bturcotte520/kilocup/internal/vec"
)

const homeTeamID = "kilo"

// newMatch builds the fixed 5-a-side rosters and places everyone for kickoff.
func newMatch(cfg Config, opponent TeamIdentity) *MatchState {
	if opponent.Name == "" {
		opponent = DefaultOpponent
	}
	if opponent.Code == "" {
		opponent.Code = strings.ToUpper(opponent.Name[:min(3, len(opponent.Name))])
	}
	awayID := strings.ToLower(opponent.Code)
	if awayID == homeTeamID || awayID == "" {
		awayID = "away"
	}

	m := &MatchState{
		Home:    newTeam(homeTeamID, HomeIdentity, 1, true),
		Away:    newTeam(awayID, opponent, -1, false),
		Clock:   Clock{TotalMs: cfg.MatchDurationMs, Phase: PhaseFirstHalf},
		Ball:    Ball{Radius: BallRadius},
		players: make(map[string]*Player, 2*len(formation)),
		teams:   make(map[string]*Team, 2),
	}
	for _, t := range []*Team{m.Home, m.Away} {
		m.teams[t.ID] = t
		for _, p := range t.Players {
			m.players[p.ID] = p
			m.all = append(m.all, p)
		}
	}
	resetKickoff(m, cfg)
	return m
}

func newTeam(id string, ident TeamIdentity, attackDir float64, human bool) *Team {
	t := &Team{ID: id, Identity: ident, AttackDir: attackDir, Human: human}
	for slot, f := range formation {
		tune := roleTuning[f.Role]
		t.Players = append(t.Players, &Player{
			ID:        id + "-" + f.Tag,
			Name:      fmt.Sprintf("%s %s", ident.Code, strings.ToUpper(f.Tag)),
			TeamID:    id,
			Role:      f.Role,
			Slot:      slot,
			Stamina:   1,
			MaxSpeed:  tune.MaxSpeed,
			Accel:     tune.Accel,
			KickPower: tune.KickPower,
		})
	}
	return t
}

// resetKickoff puts the ball on the centre spot, free, and every player on
// their kickoff position. Control returns to the home first forward.
func resetKickoff(m *MatchState, cfg Config) {
	m.Ball.Pos = vec.Vec2{}
	m.Ball.Vel = vec.Vec2{}
	m.Ball.OwnerID = ""
	m.Ball.ImmuneID = ""
	m.Ball.ImmuneMs = 0
	m.Possession = nil

	for _, t := range []*Team{m.Home, m.Away} {
		facing := 0.0
		if t.AttackDir < 0 {
			facing = math.Pi
		}
		for _, p := range t.Players {
			p.Pos = slotPosition(cfg, t, formation[p.Slot].Kickoff)
			p.Vel = vec.Vec2{}
			p.Facing = facing
			p.HasBall = false
		}
	}
	m.ControlledID = m.Home.Players[firstForwardSlot()].ID
}

func firstForwardSlot() int {
	for i, f := range formation {
		if f.Role == RoleForward {
			return i
		}
	}
	return len(formation) - 1
}

// anchor is the formation home of a player during open play.
func anchor(cfg Config, t *Team, p *Player) vec.Vec2 {
	return slotPosition(cfg, t, formation[p.Slot].Anchor)
}

func slotPosition(cfg Config, t *Team, frac [2]float64) vec.Vec2 {
	return vec.New(t.AttackDir*frac[0]*cfg.PitchW, frac[1]*cfg.PitchH)
}

// ownGoal is the centre of the goal a team defends.
func ownGoal(cfg Config, t *Team) vec.Vec2 {
	return vec.New(-t.AttackDir*cfg.PitchW/2, 0)
}

// targetGoal is the centre of the goal a team attacks.
func targetGoal(cfg Config, t *Team) vec.Vec2 {
	return vec.New(t.AttackDir*cfg.PitchW/2, 0)
}
