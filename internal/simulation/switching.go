package simulation

import (
	"math"

	"github.com/bturcotte520/kilocup/internal/input"
)

// resolveSwitching picks which home player the human drives this tick.
// Manual switching (action press without the ball) goes first; automatic
// switching runs while the ball is loose. Once the opponent has the ball the
// human is taken off the keeper.
func (s *simState) resolveSwitching(in input.Snapshot) {
	home := s.match.Home
	ctrl := s.controlled()
	if ctrl == nil {
		// Lost track of the controlled player: fall back to the nearest outfielder.
		p, _ := s.closestToBall(home.Players, outfield)
		s.setControlled(p)
		ctrl = s.controlled()
		if ctrl == nil {
			return
		}
	}

	if in.ActionPressed && !ctrl.HasBall && s.manualSwitchCooldownMs <= 0 {
		if s.manualSwitch(in) {
			return
		}
	}
	if s.match.Ball.Free() {
		s.autoSwitch()
		return
	}
	s.leaveKeeper()
}

// leaveKeeper moves control from the goalkeeper to the outfielder nearest the
// ball while the opponent carries it.
func (s *simState) leaveKeeper() {
	ctrl := s.controlled()
	if ctrl == nil || ctrl.Role != RoleGoalkeeper || ctrl.HasBall || s.switchCooldownMs > 0 {
		return
	}
	owner := s.owner()
	if owner == nil || owner.TeamID == ctrl.TeamID {
		return
	}
	if next, _ := s.closestToBall(s.match.Home.Players, outfield); next != nil {
		s.setControlled(next)
		s.switchCooldownMs = AutoSwitchCooldownMs
	}
}

// manualSwitch prefers the teammate nearest the ball that lies broadly in
// the stick direction from the ball.
func (s *simState) manualSwitch(in input.Snapshot) bool {
	ctrl := s.controlled()
	home := s.match.Home
	candidate := func(p *Player) bool { return p != ctrl && outfield(p) }

	var next *Player
	if in.Moving() {
		dir := in.Move.Normalize()
		ball := s.match.Ball.Pos
		next, _ = s.closestToBall(home.Players, func(p *Player) bool {
			return candidate(p) && p.Pos.Sub(ball).Normalize().Dot(dir) >= ManualSwitchCos
		})
	}
	if next == nil {
		next, _ = s.closestToBall(home.Players, candidate)
	}
	if next == nil {
		return false
	}

	s.setControlled(next)
	s.manualSwitchCooldownMs = ManualSwitchCooldownMs
	s.switchCooldownMs = math.Max(s.switchCooldownMs, ManualSwitchHoldOffMs)
	return true
}

// autoSwitch follows the loose ball with hysteresis and a cooldown. A
// dangerous shot hands control to the goalkeeper immediately.
func (s *simState) autoSwitch() {
	home := s.match.Home
	ctrl := s.controlled()

	if s.dangerousShot(home) {
		if gk := home.Goalkeeper(); gk != nil && gk != ctrl {
			s.setControlled(gk)
		}
		return
	}
	if s.switchCooldownMs > 0 {
		return
	}

	candidate, candDist := s.closestToBall(home.Players, outfield)
	if candidate == nil || candidate == ctrl {
		return
	}
	// Control leaves the keeper as soon as the danger has passed.
	if ctrl.Role == RoleGoalkeeper || candDist+AutoSwitchHysteresis < ctrl.Pos.Dist(s.match.Ball.Pos) {
		s.setControlled(candidate)
		s.switchCooldownMs = AutoSwitchCooldownMs
	}
}

// dangerousShot reports a fast free ball in t's half heading into t's goal
// mouth (plus a channel margin).
func (s *simState) dangerousShot(t *Team) bool {
	b := &s.match.Ball
	if !b.Free() || b.Vel.Len() < DangerShotSpeed {
		return false
	}
	// Own half and travelling toward own goal.
	if b.Pos.X*t.AttackDir > 0 || b.Vel.X*t.AttackDir >= 0 {
		return false
	}
	goalX := ownGoal(s.cfg, t).X
	tHit := (goalX - b.Pos.X) / b.Vel.X
	if tHit < 0 {
		return false
	}
	yAtLine := b.Pos.Y + b.Vel.Y*tHit
	return math.Abs(yAtLine) <= s.cfg.GoalHalfW+DangerShotChannel
}

// followPossession snaps control to any home player holding the ball.
func (s *simState) followPossession() {
	owner := s.owner()
	if owner == nil {
		return
	}
	if t := s.teamOf(owner); t != nil && t.Human {
		s.setControlled(owner)
	}
}
