package simulation

import (
	"math"
	"testing"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/vec"
)

func TestTapPassPicksNearestLaneMateAndHoldPicksFarthest(t *testing.T) {
	passer := &Player{ID: "p"}
	near := &Player{ID: "near", Pos: vec.New(10, 1)}
	far := &Player{ID: "far", Pos: vec.New(40, 20)}
	behind := &Player{ID: "behind", Pos: vec.New(-20, 0)}
	mates := []*Player{passer, far, behind, near}

	if got := selectPassTarget(passer, mates, vec.New(1, 0), true); got != near {
		t.Fatalf("tap pass: expected near, got=%s", got.ID)
	}
	if got := selectPassTarget(passer, mates, vec.New(1, 0), false); got != far {
		t.Fatalf("hold pass: expected far, got=%s", got.ID)
	}
}

func TestPassFallsBackWhenNobodyAhead(t *testing.T) {
	passer := &Player{ID: "p"}
	a := &Player{ID: "a", Pos: vec.New(-5, 3)}
	b := &Player{ID: "b", Pos: vec.New(-30, 0)}
	mates := []*Player{passer, a, b}

	if got := selectPassTarget(passer, mates, vec.New(1, 0), false); got != a {
		t.Fatalf("expected nearest fallback a, got=%v", got)
	}
	if got := selectPassTarget(passer, []*Player{passer}, vec.New(1, 0), true); got != nil {
		t.Fatal("expected no receiver without teammates")
	}
}

func TestPassSpeedGrowsWithChargeAndDistance(t *testing.T) {
	base := passSpeed(28, 0, 10)
	if charged := passSpeed(28, 1, 10); charged <= base {
		t.Fatalf("expected charge to add speed: base=%f charged=%f", base, charged)
	}
	if longer := passSpeed(28, 0, 30); longer <= base {
		t.Fatalf("expected distance to add speed: base=%f longer=%f", base, longer)
	}
	if capped := passSpeed(28, 1, 500); math.Abs(capped-28*PassMaxFactor) > 1e-9 {
		t.Fatalf("expected cap, got=%f", capped)
	}
}

func TestFullChargeShotSpeed(t *testing.T) {
	e := NewEngine(DefaultConfig(), DefaultOpponent)
	s := e.state
	park(s)
	kicker := homeForward(s)
	kicker.Pos = vec.Vec2{}
	kicker.Facing = 0
	kicker.KickPower = 30
	s.giveBall(kicker)
	s.attachBall(kicker)
	if s.match.ControlledID != kicker.ID {
		t.Fatalf("expected %s controlled, got=%s", kicker.ID, s.match.ControlledID)
	}

	stepHeld(e, 1, input.Snapshot{ShootDown: true, ShootPressed: true})
	stepHeld(e, 70, input.Snapshot{ShootDown: true})
	if s.shootChargeMs != ShootChargeMaxMs {
		t.Fatalf("expected saturated charge, got=%f", s.shootChargeMs)
	}
	stepHeld(e, 1, input.Snapshot{ShootReleased: true})

	b := s.match.Ball
	if !b.Free() {
		t.Fatal("expected ball released")
	}
	want := 30 * (ShootBaseFactor + ShootChargeFactor)
	tolerance := KickerVelocityCarry*kicker.MaxSpeed + 1e-6
	if math.Abs(b.Vel.X-want) > tolerance {
		t.Fatalf("expected vx≈%f, got=%f", want, b.Vel.X)
	}
	if math.Abs(b.Vel.Y) > tolerance {
		t.Fatalf("expected vy≈0, got=%f", b.Vel.Y)
	}
}

func TestUnarmedReleaseDoesNotShoot(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	s.giveBall(p)
	s.attachBall(p)

	s.processHumanKicks(input.Snapshot{ShootReleased: true}, testTickMs)
	if !p.HasBall {
		t.Fatal("release without a press fired a shot")
	}
}

func TestChargeClearedWhenControlChanges(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	s.giveBall(p)
	s.attachBall(p)

	s.processHumanKicks(input.Snapshot{ShootDown: true, ShootPressed: true}, testTickMs)
	s.processHumanKicks(input.Snapshot{ShootDown: true}, testTickMs)
	if s.shootChargeMs <= 0 {
		t.Fatal("expected charge to build")
	}

	s.setControlled(s.match.Home.Players[2])
	if s.shootChargeMs != 0 || s.shootArmed {
		t.Fatal("expected charge cleared on control change")
	}
}

func TestChargeResetsWhenHoldIsInterrupted(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	s.giveBall(p)
	s.attachBall(p)

	s.processHumanKicks(input.Snapshot{ActionDown: true, ActionPressed: true}, testTickMs)
	s.processHumanKicks(input.Snapshot{ActionDown: true}, testTickMs)
	s.processHumanKicks(input.Snapshot{}, testTickMs)
	if s.actionChargeMs != 0 || s.actionArmed {
		t.Fatalf("expected pass charge reset, got=%f armed=%v", s.actionChargeMs, s.actionArmed)
	}
	if !p.HasBall {
		t.Fatal("interrupted hold must not pass")
	}
}

func TestTapPassReachesLaneMate(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	p.Pos = vec.Vec2{}
	p.Facing = 0
	s.giveBall(p)
	s.attachBall(p)
	mate := s.match.Home.Players[4]
	mate.Pos = vec.New(15, 2)

	s.processHumanKicks(input.Snapshot{ActionPressed: true, ActionReleased: true}, testTickMs)
	if p.HasBall {
		t.Fatal("expected pass released")
	}
	dir := s.match.Ball.Vel.Normalize()
	want := mate.Pos.Sub(s.match.Ball.Pos).Normalize()
	if dir.Dot(want) < 0.99 {
		t.Fatalf("pass not aimed at mate: dir=%+v want=%+v", dir, want)
	}
}

// passFromCentre sets up the home forward on the ball at the centre spot with
// one teammate just off the aim line and one far out on the wing.
func passFromCentre(t *testing.T) (e *Engine, near, far *Player) {
	t.Helper()
	e = NewEngine(DefaultConfig(), DefaultOpponent)
	s := e.state
	park(s)
	kicker := homeForward(s)
	kicker.Pos = vec.Vec2{}
	kicker.Facing = 0
	s.giveBall(kicker)
	s.attachBall(kicker)
	s.setControlled(kicker)

	near = s.match.Home.Players[2]
	near.Pos = vec.New(10, 1)
	far = s.match.Home.Players[4]
	far.Pos = vec.New(40, 20)
	return e, near, far
}

func headingTo(s *simState, p *Player) float64 {
	return s.match.Ball.Vel.Normalize().Dot(p.Pos.Sub(s.match.Ball.Pos).Normalize())
}

func TestHoldDurationChoosesPassReceiver(t *testing.T) {
	t.Run("tap", func(t *testing.T) {
		e, near, far := passFromCentre(t)
		stepHeld(e, 1, input.Snapshot{ActionDown: true, ActionPressed: true})
		stepHeld(e, 1, input.Snapshot{ActionReleased: true})

		s := e.state
		if !s.match.Ball.Free() {
			t.Fatal("expected tap to release a pass")
		}
		if got := headingTo(s, near); got < 0.98 || got <= headingTo(s, far) {
			t.Fatalf("expected pass toward near mate, dot near=%f far=%f", got, headingTo(s, far))
		}
	})

	t.Run("hold", func(t *testing.T) {
		e, near, far := passFromCentre(t)
		stepHeld(e, 1, input.Snapshot{ActionDown: true, ActionPressed: true})
		stepHeld(e, 11, input.Snapshot{ActionDown: true})
		if e.state.actionChargeMs < PassTapThresholdMs {
			t.Fatalf("expected charge past the tap threshold, got=%f", e.state.actionChargeMs)
		}
		stepHeld(e, 1, input.Snapshot{ActionReleased: true})

		s := e.state
		if !s.match.Ball.Free() {
			t.Fatal("expected hold to release a pass")
		}
		if got := headingTo(s, far); got < 0.98 || got <= headingTo(s, near) {
			t.Fatalf("expected pass toward far mate, dot far=%f near=%f", got, headingTo(s, near))
		}
	})
}

func TestReleaseWhileHeldAgainKeepsCharging(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	s.giveBall(p)
	s.attachBall(p)

	s.processHumanKicks(input.Snapshot{ShootDown: true, ShootPressed: true}, testTickMs)
	s.processHumanKicks(input.Snapshot{ShootDown: true, ShootPressed: true, ShootReleased: true}, testTickMs)
	if !p.HasBall {
		t.Fatal("a release followed by a new press in one frame fired a shot")
	}
	if want := 2 * testTickMs; math.Abs(s.shootChargeMs-want) > 1e-9 {
		t.Fatalf("expected charge to keep running, got=%f want=%f", s.shootChargeMs, want)
	}

	s.processHumanKicks(input.Snapshot{ShootReleased: true}, testTickMs)
	if p.HasBall {
		t.Fatal("expected the final release to shoot")
	}
}
