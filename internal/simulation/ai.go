package simulation

import (
	"math"

	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/vec"
)

// runOpponent decides for the non-human team. It returns desired velocities
// for the players it drives directly; everyone else falls back to the NPC
// heuristic. Kicks are released here, before players move.
func (s *simState) runOpponent(dt float64) map[string]vec.Vec2 {
	team := s.match.Away
	ball := &s.match.Ball
	desired := make(map[string]vec.Vec2, 1)

	owner := s.owner()
	if owner == nil || owner.TeamID != team.ID {
		chaser, _ := s.closestToBall(team.Players, outfield)
		if chaser == nil {
			s.ai.chaserID = ""
			return desired
		}
		s.ai.chaserID = chaser.ID
		desired[chaser.ID] = ball.Pos.Sub(chaser.Pos).Normalize().Scale(chaser.MaxSpeed)
		return desired
	}

	s.ai.chaserID = owner.ID
	if owner.Role == RoleGoalkeeper {
		// Keepers clear rather than dribble.
		if s.ai.cooldownMs <= 0 {
			if target := s.bestAIPassTarget(owner, true); target != nil {
				s.aiPass(owner, target)
			} else {
				s.releaseBallWithKick(owner, vec.New(team.AttackDir, 0), shotSpeed(owner.KickPower, 0.5))
				s.ai.cooldownMs = s.aiCooldown()
			}
		}
		return desired
	}

	goal := targetGoal(s.cfg, team)
	toGoal := goal.Sub(owner.Pos)
	dir := toGoal.Normalize()
	s.ai.phase += dt * AIJitterRate
	dir = dir.Add(dir.Perp().Scale(math.Sin(s.ai.phase) * AIJitterAmplitude)).Normalize()
	desired[owner.ID] = dir.Scale(owner.MaxSpeed * DribbleSpeedFactor)

	if s.ai.cooldownMs > 0 {
		return desired
	}

	if toGoal.Len() <= AIShootRange && math.Abs(owner.Pos.Y) <= s.cfg.GoalHalfW*AIShootAlignFactor {
		aimY := (s.ai.rng.Float64()*2 - 1) * 0.6 * s.cfg.GoalHalfW
		aim := vec.New(goal.X, aimY).Sub(ball.Pos)
		charge := 0.5 + 0.5*s.ai.rng.Float64()
		s.releaseBallWithKick(owner, aim, shotSpeed(owner.KickPower, charge))
		s.ai.cooldownMs = s.aiCooldown()
		s.log.Debug("ai shot", zap.Uint64("tick", s.tick), zap.String("player", owner.ID))
		return desired
	}

	pressured := s.underPressure(owner)
	if pressured || s.ai.rng.Float64() < AIBasePassChance {
		if target := s.bestAIPassTarget(owner, pressured); target != nil {
			s.aiPass(owner, target)
		}
	}
	return desired
}

func (s *simState) aiPass(owner, target *Player) {
	from := s.match.Ball.Pos
	to := target.Pos.Add(target.Vel.Scale(PassLeadSeconds)).Sub(from)
	charge := 0.3 + 0.4*s.ai.rng.Float64()
	s.releaseBallWithKick(owner, to, passSpeed(owner.KickPower, charge, to.Len()))
	s.ai.cooldownMs = s.aiCooldown()
	s.log.Debug("ai pass", zap.Uint64("tick", s.tick), zap.String("from", owner.ID), zap.String("to", target.ID))
}

// aiCooldown draws the next decision delay from a band so passes and shots
// do not fall on a fixed beat.
func (s *simState) aiCooldown() float64 {
	return AICooldownMinMs + s.ai.rng.Float64()*(AICooldownMaxMs-AICooldownMinMs)
}

func (s *simState) underPressure(p *Player) bool {
	for _, o := range s.match.Opponent(s.teamOf(p)).Players {
		if o.Pos.Dist(p.Pos) <= AIPressureRadius {
			return true
		}
	}
	return false
}

// bestAIPassTarget scores teammates: forward progress and central position
// are rewarded, distance and opponents near the passing lane are penalized,
// and tightly marked receivers are rejected.
func (s *simState) bestAIPassTarget(owner *Player, pressured bool) *Player {
	team := s.teamOf(owner)
	opponents := s.match.Opponent(team).Players

	var best *Player
	bestScore := AIMinPassScore
	if pressured {
		bestScore = AIPressuredPassScore
	}
	for _, m := range team.Players {
		if m == owner || m.Role == RoleGoalkeeper {
			continue
		}
		dist := m.Pos.Dist(owner.Pos)
		if dist < AIPassMinDist || dist > AIPassMaxDist {
			continue
		}

		marked := false
		risk := 0.0
		for _, o := range opponents {
			if o.Pos.Dist(m.Pos) < AIPassMarkingRadius {
				marked = true
				break
			}
			if d := vec.SegmentDist(o.Pos, owner.Pos, m.Pos); d < AILaneRiskRadius {
				risk += AILaneRiskRadius - d
			}
		}
		if marked {
			continue
		}

		progress := (m.Pos.X - owner.Pos.X) * team.AttackDir
		score := progress - 0.25*math.Abs(m.Pos.Y) - 0.2*dist - 6*risk
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

// npcDesiredVelocity is the shared positioning heuristic for every player
// nobody is steering directly. Targets are leashed to the formation anchor
// and kept on the pitch.
func (s *simState) npcDesiredVelocity(p *Player) vec.Vec2 {
	cfg := s.cfg
	team := s.teamOf(p)
	ball := s.match.Ball.Pos
	home := anchor(cfg, team, p)
	tune := roleTuning[p.Role]
	possessing := s.possessingTeam()

	var target vec.Vec2
	switch {
	case p.Role == RoleGoalkeeper:
		line := ownGoal(cfg, team).X + team.AttackDir*GoalkeeperLineOffset
		target = vec.New(line, clamp(ball.Y*GoalkeeperTrackFactor, -cfg.GoalHalfW, cfg.GoalHalfW))
	case p.HasBall:
		target = targetGoal(cfg, team)
	case possessing == team:
		target = vec.New(ball.X+team.AttackDir*tune.Advance, home.Y*0.7+ball.Y*0.3)
	case possessing == nil:
		target = home.Lerp(ball, LooseBallPull)
	default:
		target = ownGoal(cfg, team).Lerp(ball, tune.Retreat)
		target.Y = target.Y*0.7 + home.Y*0.3
		if ball.Dist(home) > FarBallDistance {
			target = target.Lerp(home, 0.5)
		}
	}

	if off := target.Sub(home); off.Len() > tune.Leash {
		target = home.Add(off.ClampLen(tune.Leash))
	}
	target = clampToPitch(cfg, target, PlayerRadius)

	to := target.Sub(p.Pos)
	dist := to.Len()
	speed := p.MaxSpeed * NPCSpeedFactor
	if dist < NPCArriveRadius {
		speed *= dist / NPCArriveRadius
	}
	return to.Normalize().Scale(speed)
}
