package simulation

import "go.uber.org/zap"

// resolveSteal lets an opposing player take an owned ball. The tackler must
// overlap the ball inside StealRadius and be moving at it faster than
// StealMinApproachSpeed. A successful steal starts StealCooldownMs, during
// which the ball cannot change hands again this way.
func (s *simState) resolveSteal(owner *Player) *Player {
	if s.stealCooldownMs > 0 {
		return nil
	}
	ownerTeam := s.teamOf(owner)
	if ownerTeam == nil {
		return nil
	}
	b := &s.match.Ball

	var best *Player
	bestDist := 0.0
	for _, p := range s.match.Opponent(ownerTeam).Players {
		toBall := b.Pos.Sub(p.Pos)
		d := toBall.Len()
		if d > StealRadius {
			continue
		}
		if p.Vel.Dot(toBall.Normalize()) < StealMinApproachSpeed {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	if best == nil {
		return nil
	}

	s.giveBall(best)
	s.stealCooldownMs = StealCooldownMs
	s.log.Debug("steal",
		zap.Uint64("tick", s.tick),
		zap.String("from", owner.ID),
		zap.String("to", best.ID),
	)
	return best
}
