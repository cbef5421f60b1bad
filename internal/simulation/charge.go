package simulation

import (
	"math"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/vec"
)

// processHumanKicks runs the shoot and pass charge counters for the
// controlled carrier. A counter only runs once armed by a press made while
// carrying the ball, saturates at its ceiling while held, and resets on any
// frame where the button is neither held nor released. A release latched in
// the same snapshot as a fresh hold (release then press again within one
// frame) is ignored: the button is down, so the charge keeps running.
func (s *simState) processHumanKicks(in input.Snapshot, dtMs float64) {
	p := s.controlled()
	if p == nil || !p.HasBall {
		s.clearCharges()
		return
	}

	if in.ShootPressed {
		s.shootArmed = true
	}
	if s.shootArmed && in.ShootDown {
		s.shootChargeMs = math.Min(s.shootChargeMs+dtMs, ShootChargeMaxMs)
	}
	if s.shootArmed && in.ShootReleased && !in.ShootDown {
		s.shoot(p, aimOf(p, in), s.shootChargeMs/ShootChargeMaxMs)
		return
	}
	if !in.ShootDown && !in.ShootReleased {
		s.shootChargeMs = 0
		s.shootArmed = false
	}

	if in.ActionPressed {
		s.actionArmed = true
	}
	if s.actionArmed && in.ActionDown {
		s.actionChargeMs = math.Min(s.actionChargeMs+dtMs, PassChargeMaxMs)
	}
	if s.actionArmed && in.ActionReleased && !in.ActionDown {
		s.pass(p, aimOf(p, in), s.actionChargeMs)
		return
	}
	if !in.ActionDown && !in.ActionReleased {
		s.actionChargeMs = 0
		s.actionArmed = false
	}
}

// aimOf is the steering direction when the stick is pushed, else facing.
func aimOf(p *Player, in input.Snapshot) vec.Vec2 {
	if in.Moving() {
		return in.Move.Normalize()
	}
	return vec.FromAngle(p.Facing)
}

func shotSpeed(kickPower, chargeFrac float64) float64 {
	return kickPower * (ShootBaseFactor + ShootChargeFactor*clamp(chargeFrac, 0, 1))
}

func (s *simState) shoot(p *Player, aim vec.Vec2, chargeFrac float64) {
	s.releaseBallWithKick(p, aim, shotSpeed(p.KickPower, chargeFrac))
}

func passSpeed(kickPower, chargeFrac, dist float64) float64 {
	v := kickPower*(PassBaseFactor+PassChargeFactor*clamp(chargeFrac, 0, 1)) + dist*PassDistanceGain
	return math.Min(v, kickPower*PassMaxFactor)
}

// pass picks a receiver from the aim and hold time and kicks toward where
// that receiver will be. Without a receiver the ball goes along the aim.
func (s *simState) pass(p *Player, aim vec.Vec2, holdMs float64) {
	team := s.teamOf(p)
	frac := holdMs / PassChargeMaxMs
	tap := holdMs < PassTapThresholdMs

	var target *Player
	if team != nil {
		target = selectPassTarget(p, team.Players, aim, tap)
	}
	if target == nil {
		s.releaseBallWithKick(p, aim, passSpeed(p.KickPower, frac, 0))
		return
	}

	from := s.match.Ball.Pos
	lead := target.Pos.Add(target.Vel.Scale(PassLeadSeconds))
	to := lead.Sub(from)
	s.releaseBallWithKick(p, to, passSpeed(p.KickPower, frac, to.Len()))
}

type passCandidate struct {
	p       *Player
	dist    float64
	lateral float64
}

// selectPassTarget chooses a receiver among mates. Candidates in the lane
// band around the aim ray win: a tap takes the smallest lateral deviation
// (then nearest), a hold takes the farthest. With nobody in the lane the
// nearest teammate ahead is used, and with nobody ahead the nearest overall.
func selectPassTarget(passer *Player, mates []*Player, aim vec.Vec2, tap bool) *Player {
	dir := aim.Normalize()
	var lane, ahead, all []passCandidate
	for _, m := range mates {
		if m == passer {
			continue
		}
		rel := m.Pos.Sub(passer.Pos)
		dist := rel.Len()
		if dist < vec.Epsilon {
			continue
		}
		c := passCandidate{p: m, dist: dist, lateral: math.Abs(rel.Cross(dir))}
		all = append(all, c)
		if dir.IsZero() {
			continue
		}
		along := rel.Dot(dir)
		if along <= 0 {
			continue
		}
		ahead = append(ahead, c)
		if c.lateral <= PassLaneHalfWidth || along/dist >= PassLaneCos {
			lane = append(lane, c)
		}
	}

	if len(lane) > 0 {
		best := lane[0]
		for _, c := range lane[1:] {
			if tap {
				if c.lateral < best.lateral-vec.Epsilon ||
					(math.Abs(c.lateral-best.lateral) <= vec.Epsilon && c.dist < best.dist) {
					best = c
				}
			} else if c.dist > best.dist {
				best = c
			}
		}
		return best.p
	}

	pool := ahead
	if len(pool) == 0 {
		pool = all
	}
	if len(pool) == 0 {
		return nil
	}
	best := pool[0]
	for _, c := range pool[1:] {
		if c.dist < best.dist {
			best = c
		}
	}
	return best.p
}
