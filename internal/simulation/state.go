package simulation

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/vec"
)

// simState is everything one step mutates. The engine owns exactly one and
// never hands it out; presentation reads materialized copies.
type simState struct {
	cfg   Config
	match *MatchState
	log   *zap.Logger
	tick  uint64

	paused        bool
	kickoffHoldMs float64
	awaitInput    bool

	switchCooldownMs       float64
	manualSwitchCooldownMs float64
	stealCooldownMs        float64

	shootChargeMs  float64
	actionChargeMs float64
	shootArmed     bool
	actionArmed    bool

	ai aiState
}

// aiState is the opponent controller's memory between ticks.
type aiState struct {
	rng        *rand.Rand
	cooldownMs float64
	phase      float64
	chaserID   string
}

func newSimState(cfg Config, opponent TeamIdentity, log *zap.Logger) *simState {
	if log == nil {
		log = zap.NewNop()
	}
	return &simState{
		cfg:   cfg,
		match: newMatch(cfg, opponent),
		log:   log,
		ai:    aiState{rng: rand.New(rand.NewSource(cfg.Seed))},
	}
}

func (s *simState) teamOf(p *Player) *Team {
	return s.match.Team(p.TeamID)
}

func (s *simState) controlled() *Player {
	return s.match.Player(s.match.ControlledID)
}

func (s *simState) owner() *Player {
	return s.match.Player(s.match.Ball.OwnerID)
}

// possessingTeam returns the team that owns the ball, or nil while it is free.
func (s *simState) possessingTeam() *Team {
	if s.match.Possession == nil {
		return nil
	}
	return s.match.Team(s.match.Possession.TeamID)
}

// giveBall makes p the sole owner. Any previous owner loses its flag first.
func (s *simState) giveBall(p *Player) {
	m := s.match
	if prev := s.owner(); prev != nil {
		prev.HasBall = false
	}
	m.Ball.OwnerID = p.ID
	m.Ball.LastTouchTeamID = p.TeamID
	m.Ball.ImmuneID = ""
	m.Ball.ImmuneMs = 0
	p.HasBall = true
	m.Possession = &Possession{TeamID: p.TeamID, PlayerID: p.ID}
	s.clearCharges()

	if t := s.teamOf(p); t != nil && !t.Human {
		s.ai.cooldownMs = max(s.ai.cooldownMs, AIReceiveDelayMs)
	}
}

// freeBall detaches the ball from whoever holds it.
func (s *simState) freeBall() {
	m := s.match
	if prev := s.owner(); prev != nil {
		prev.HasBall = false
	}
	m.Ball.OwnerID = ""
	m.Possession = nil
	s.clearCharges()
}

func (s *simState) setControlled(p *Player) {
	if p == nil || p.ID == s.match.ControlledID {
		return
	}
	s.match.ControlledID = p.ID
	s.clearCharges()
}

func (s *simState) clearCharges() {
	s.shootChargeMs = 0
	s.actionChargeMs = 0
	s.shootArmed = false
	s.actionArmed = false
}

// tickTimers decrements every cooldown and the kick immunity window.
func (s *simState) tickTimers(dtMs float64) {
	s.switchCooldownMs = max(0, s.switchCooldownMs-dtMs)
	s.manualSwitchCooldownMs = max(0, s.manualSwitchCooldownMs-dtMs)
	s.stealCooldownMs = max(0, s.stealCooldownMs-dtMs)
	s.ai.cooldownMs = max(0, s.ai.cooldownMs-dtMs)

	b := &s.match.Ball
	if b.ImmuneMs > 0 {
		b.ImmuneMs -= dtMs
		if b.ImmuneMs <= 0 {
			b.ImmuneMs = 0
			b.ImmuneID = ""
		}
	}
}

// closestToBall returns the player in ps nearest the ball that passes keep.
func (s *simState) closestToBall(ps []*Player, keep func(*Player) bool) (*Player, float64) {
	var best *Player
	bestDist := 0.0
	for _, p := range ps {
		if keep != nil && !keep(p) {
			continue
		}
		d := p.Pos.Dist(s.match.Ball.Pos)
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist
}

func outfield(p *Player) bool {
	return p.Role != RoleGoalkeeper
}

func clampToPitch(cfg Config, pos vec.Vec2, margin float64) vec.Vec2 {
	hx := cfg.PitchW/2 - margin
	hy := cfg.PitchH/2 - margin
	return vec.New(clamp(pos.X, -hx, hx), clamp(pos.Y, -hy, hy))
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
