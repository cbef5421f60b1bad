package simulation

import (
	"math"

	"github.com/bturcotte520/kilocup/internal/vec"
)

// integratePlayer steers velocity toward desired by at most Accel*dt, then
// caps speed at max(MaxSpeed, |desired|) so sprint requests above the
// nominal cap survive.
func integratePlayer(p *Player, desired vec.Vec2, dt float64) {
	dv := desired.Sub(p.Vel).ClampLen(p.Accel * dt)
	p.Vel = p.Vel.Add(dv)
	p.Vel = p.Vel.ClampLen(math.Max(p.MaxSpeed, desired.Len()))
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	if p.Vel.Len() > FacingMinSpeed {
		p.Facing = p.Vel.Angle()
	}
}

// containPlayerInPitch clamps the body inside the touchlines and drops the
// velocity component pushing into the wall.
func containPlayerInPitch(cfg Config, p *Player) {
	hx := cfg.PitchW/2 - PlayerRadius
	hy := cfg.PitchH/2 - PlayerRadius
	if p.Pos.X < -hx {
		p.Pos.X = -hx
		p.Vel.X = math.Max(p.Vel.X, 0)
	}
	if p.Pos.X > hx {
		p.Pos.X = hx
		p.Vel.X = math.Min(p.Vel.X, 0)
	}
	if p.Pos.Y < -hy {
		p.Pos.Y = -hy
		p.Vel.Y = math.Max(p.Vel.Y, 0)
	}
	if p.Pos.Y > hy {
		p.Pos.Y = hy
		p.Vel.Y = math.Min(p.Vel.Y, 0)
	}
}

type goalResult struct {
	scored        bool
	scoringTeamID string
}

// integrateFreeBall moves a free ball, applies friction, checks for a goal
// and bounces off every wall except the goal mouths.
func (s *simState) integrateFreeBall(dt float64) goalResult {
	cfg := s.cfg
	b := &s.match.Ball

	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	b.Vel = b.Vel.Scale(math.Pow(BallFrictionPerSec, dt))
	if b.Vel.Len() < BallStopSpeed {
		b.Vel = vec.Vec2{}
	}

	if res := detectGoal(cfg, b, s.match.Home, s.match.Away); res.scored {
		return res
	}

	halfL := cfg.PitchW / 2
	halfW := cfg.PitchH / 2

	// Goal mouths are open on the x walls.
	if math.Abs(b.Pos.Y) > cfg.GoalHalfW {
		if b.Pos.X < -halfL+b.Radius {
			b.Pos.X = -halfL + b.Radius
			b.Vel.X = -b.Vel.X * WallRestitution
		}
		if b.Pos.X > halfL-b.Radius {
			b.Pos.X = halfL - b.Radius
			b.Vel.X = -b.Vel.X * WallRestitution
		}
	}
	if b.Pos.Y < -halfW+b.Radius {
		b.Pos.Y = -halfW + b.Radius
		b.Vel.Y = -b.Vel.Y * WallRestitution
	}
	if b.Pos.Y > halfW-b.Radius {
		b.Pos.Y = halfW - b.Radius
		b.Vel.Y = -b.Vel.Y * WallRestitution
	}
	return goalResult{}
}

// detectGoal scores when the ball is inside a mouth and fully past the line.
// The team defending that end concedes.
func detectGoal(cfg Config, b *Ball, home, away *Team) goalResult {
	if math.Abs(b.Pos.Y) > cfg.GoalHalfW {
		return goalResult{}
	}
	line := cfg.PitchW/2 + b.Radius
	var crossedDir float64
	switch {
	case b.Pos.X < -line:
		crossedDir = -1
	case b.Pos.X > line:
		crossedDir = 1
	default:
		return goalResult{}
	}
	// The attacker is the team whose AttackDir points at the crossed end.
	if home.AttackDir == crossedDir {
		return goalResult{scored: true, scoringTeamID: home.ID}
	}
	return goalResult{scored: true, scoringTeamID: away.ID}
}

// claimable reports whether p may take the free ball within radius.
func (s *simState) claimable(p *Player, radius float64) (float64, bool) {
	b := &s.match.Ball
	if b.ImmuneMs > 0 && b.ImmuneID == p.ID {
		return 0, false
	}
	d := p.Pos.Dist(b.Pos)
	return d, d <= radius
}

// tryClaimBall hands a slow free ball to the nearest eligible candidate.
func (s *simState) tryClaimBall(candidates []*Player) *Player {
	b := &s.match.Ball
	if !b.Free() || b.Vel.Len() >= ClaimMaxSpeed {
		return nil
	}
	return s.claimNearest(candidates, ClaimRadius)
}

// tryImmediatePickup claims on any touch, regardless of ball speed.
func (s *simState) tryImmediatePickup(candidates []*Player) *Player {
	if !s.match.Ball.Free() {
		return nil
	}
	return s.claimNearest(candidates, PickupRadius)
}

func (s *simState) claimNearest(candidates []*Player, radius float64) *Player {
	var best *Player
	bestDist := 0.0
	for _, p := range candidates {
		d, ok := s.claimable(p, radius)
		if !ok {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	if best != nil {
		s.giveBall(best)
	}
	return best
}

// releaseBallWithKick frees the ball along dir. Speed is floored at
// MinKickSpeed and the kicker's own run carries into the ball.
func (s *simState) releaseBallWithKick(kicker *Player, dir vec.Vec2, speed float64) {
	b := &s.match.Ball
	d := dir.Normalize()
	if d.IsZero() {
		d = vec.FromAngle(kicker.Facing)
	}
	speed = math.Max(speed, MinKickSpeed)

	v := d.Scale(speed).Add(kicker.Vel.Scale(KickerVelocityCarry))
	if v.Len() < MinKickSpeed {
		// Running against the kick can cancel it out; keep the floor.
		v = v.Normalize().Scale(MinKickSpeed)
		if v.IsZero() {
			v = d.Scale(MinKickSpeed)
		}
	}

	s.freeBall()
	b.Vel = v
	b.LastTouchTeamID = kicker.TeamID
	b.ImmuneID = kicker.ID
	b.ImmuneMs = KickImmunityMs
}

// attachBall keeps an owned ball at the carrier's feet.
func (s *simState) attachBall(owner *Player) {
	b := &s.match.Ball
	ahead := vec.FromAngle(owner.Facing).Scale(DribbleOffset)
	b.Pos = clampToPitch(s.cfg, owner.Pos.Add(ahead), b.Radius)
	b.Vel = owner.Vel
}

// bumpBall knocks a free ball off a player body it overlaps. Separating
// contacts and the immune kicker are ignored.
func (s *simState) bumpBall(p *Player) {
	b := &s.match.Ball
	if b.ImmuneMs > 0 && b.ImmuneID == p.ID {
		return
	}
	delta := b.Pos.Sub(p.Pos)
	dist := delta.Len()
	minDist := PlayerRadius + b.Radius
	if dist < vec.Epsilon || dist >= minDist {
		return
	}
	n := delta.Scale(1 / dist)

	rel := b.Vel.Dot(n) - p.Vel.Dot(n)
	if rel > 0 {
		return
	}
	impulse := -(1 + BumpElasticity) * rel
	b.Vel = b.Vel.Add(n.Scale(impulse))
	b.Pos = b.Pos.Add(n.Scale(minDist - dist))
	b.LastTouchTeamID = p.TeamID
	keepBallOnPitch(s.cfg, b)
}

// keepBallOnPitch stops a push from shoving the ball through a wall. Inside
// a goal mouth the ball may sit on the scoring line.
func keepBallOnPitch(cfg Config, b *Ball) {
	hy := cfg.PitchH/2 - b.Radius
	b.Pos.Y = clamp(b.Pos.Y, -hy, hy)
	hx := cfg.PitchW/2 - b.Radius
	if math.Abs(b.Pos.Y) <= cfg.GoalHalfW {
		hx = cfg.PitchW/2 + b.Radius
	}
	b.Pos.X = clamp(b.Pos.X, -hx, hx)
}
