package simulation

import (
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/vec"
)

// step advances the match by dtMs. It never clears input edges; the host
// does that after every call. At most one event is produced per tick.
func (s *simState) step(in input.Snapshot, dtMs float64) []Event {
	m := s.match

	if in.PausePressed && m.Clock.Phase != PhaseFullTime {
		s.paused = !s.paused
	}
	if s.paused || m.Clock.Phase == PhaseFullTime {
		return nil
	}

	if s.kickoffHoldMs > 0 {
		s.kickoffHoldMs -= dtMs
		if s.kickoffHoldMs <= 0 {
			s.kickoffHoldMs = 0
			s.awaitInput = true
		}
		return nil
	}
	if s.awaitInput {
		if in.Any() {
			s.awaitInput = false
			m.LastEvent = ""
		}
		return nil
	}

	s.tick++
	m.Clock.ElapsedMs += dtMs
	if m.Clock.ElapsedMs >= m.Clock.TotalMs {
		m.Clock.ElapsedMs = m.Clock.TotalMs
		m.Clock.Phase = PhaseFullTime
		m.LastEvent = fullTimeText(m)
		s.log.Info("full time", zap.Int("home", m.Score.Home), zap.Int("away", m.Score.Away))
		return []Event{FullTimeEvent{Score: m.Score, Text: m.LastEvent}}
	}

	dt := dtMs / 1000
	s.tickTimers(dtMs)
	s.resolveSwitching(in)
	aiDesired := s.runOpponent(dt)
	s.movePlayers(in, aiDesired, dt)
	return s.resolveBall(in, dt, dtMs)
}

func (s *simState) movePlayers(in input.Snapshot, aiDesired map[string]vec.Vec2, dt float64) {
	ctrl := s.controlled()
	for _, p := range s.match.AllPlayers() {
		var desired vec.Vec2
		sprinting := false
		if p == ctrl {
			desired = humanDesiredVelocity(p, in)
			sprinting = in.Sprint && in.Moving()
		} else if d, ok := aiDesired[p.ID]; ok {
			desired = d
		} else {
			desired = s.npcDesiredVelocity(p)
		}
		updateStamina(p, sprinting, dt)
		integratePlayer(p, desired, dt)
		containPlayerInPitch(s.cfg, p)
	}
}

func humanDesiredVelocity(p *Player, in input.Snapshot) vec.Vec2 {
	if !in.Moving() {
		return vec.Vec2{}
	}
	speed := p.MaxSpeed
	if in.Sprint {
		speed *= SprintMultiplier
	}
	if p.HasBall {
		speed *= DribbleSpeedFactor
	}
	return in.Move.ClampLen(1).Scale(speed)
}

// updateStamina is advisory only; nothing reads it for movement yet.
func updateStamina(p *Player, sprinting bool, dt float64) {
	if sprinting {
		p.Stamina = max(0, p.Stamina-StaminaDrainPerSec*dt)
		return
	}
	p.Stamina = min(1, p.Stamina+StaminaRegenPerSec*dt)
}

// resolveBall handles the owned and free ball cases for this tick.
func (s *simState) resolveBall(in input.Snapshot, dt, dtMs float64) []Event {
	m := s.match
	b := &m.Ball

	if !b.Free() {
		owner := s.owner()
		if owner == nil {
			// Dangling owner id: keep playing with a free ball.
			s.log.Warn("ball owner missing", zap.String("owner", b.OwnerID))
			s.freeBall()
		} else {
			s.attachBall(owner)
			if stealer := s.resolveSteal(owner); stealer != nil {
				s.attachBall(stealer)
			}
			s.followPossession()
			s.processHumanKicks(in, dtMs)
			return nil
		}
	}

	s.clearCharges()
	if res := s.integrateFreeBall(dt); res.scored {
		return []Event{s.resolveGoal(res.scoringTeamID)}
	}

	for _, p := range m.AllPlayers() {
		s.bumpBall(p)
	}
	if s.tryImmediatePickup(s.pickupCandidates()) == nil {
		s.tryClaimBall(m.AllPlayers())
	}
	if owner := s.owner(); owner != nil {
		s.followPossession()
		s.attachBall(owner)
	}
	return nil
}

// pickupCandidates are the players whose touch claims the ball instantly:
// the human's player, the opponent chaser and both keepers.
func (s *simState) pickupCandidates() []*Player {
	m := s.match
	out := make([]*Player, 0, 4)
	if p := s.controlled(); p != nil {
		out = append(out, p)
	}
	if p := m.Player(s.ai.chaserID); p != nil {
		out = append(out, p)
	}
	for _, t := range []*Team{m.Home, m.Away} {
		if gk := t.Goalkeeper(); gk != nil && gk.ID != m.ControlledID {
			out = append(out, gk)
		}
	}
	return out
}

// resolveGoal books the goal, resets for kickoff and starts the hold.
func (s *simState) resolveGoal(scoringTeamID string) Event {
	m := s.match
	scorer := m.Team(scoringTeamID)
	if scorer == m.Home {
		m.Score.Home++
	} else {
		m.Score.Away++
	}
	m.LastEvent = goalText(scorer, m)

	resetKickoff(m, s.cfg)
	s.clearCharges()
	s.switchCooldownMs = 0
	s.manualSwitchCooldownMs = 0
	s.stealCooldownMs = 0
	s.ai.cooldownMs = 0
	s.ai.chaserID = ""
	s.kickoffHoldMs = s.cfg.KickoffHoldMs
	s.awaitInput = s.kickoffHoldMs <= 0

	s.log.Info("goal",
		zap.Uint64("tick", s.tick),
		zap.String("team", scoringTeamID),
		zap.Int("home", m.Score.Home),
		zap.Int("away", m.Score.Away),
	)
	return GoalEvent{ScoringTeamID: scoringTeamID, Score: m.Score, Text: m.LastEvent}
}
