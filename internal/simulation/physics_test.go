package simulation

import (
	"math"
	"testing"

	"github.com/bturcotte520/kilocup/internal/vec"
)

func TestFreeBallCrossingLeftLineScoresForAway(t *testing.T) {
	s := newTestState(t)
	s.cfg.PitchW, s.cfg.PitchH, s.cfg.GoalHalfW = 120, 80, 10
	s.match.Ball.Pos = vec.New(-61, 0)
	s.match.Ball.Vel = vec.New(-5, 0)

	res := s.integrateFreeBall(testTickMs / 1000)
	if !res.scored {
		t.Fatal("expected goal")
	}
	if res.scoringTeamID != s.match.Away.ID {
		t.Fatalf("expected away to score, got=%s", res.scoringTeamID)
	}
}

func TestFreeBallCrossingRightLineScoresForHome(t *testing.T) {
	s := newTestState(t)
	s.match.Ball.Pos = vec.New(s.cfg.PitchW/2+BallRadius+0.1, 3)
	s.match.Ball.Vel = vec.New(20, 0)

	res := s.integrateFreeBall(testTickMs / 1000)
	if !res.scored || res.scoringTeamID != s.match.Home.ID {
		t.Fatalf("expected home goal, got=%+v", res)
	}
}

func TestBallOutsideMouthBouncesInsteadOfScoring(t *testing.T) {
	s := newTestState(t)
	s.match.Ball.Pos = vec.New(s.cfg.PitchW/2-1, s.cfg.GoalHalfW+2)
	s.match.Ball.Vel = vec.New(40, 0)

	res := s.integrateFreeBall(testTickMs / 1000)
	if res.scored {
		t.Fatal("ball outside the mouth must not score")
	}
	if s.match.Ball.Vel.X >= 0 {
		t.Fatalf("expected bounce back, got vel=%+v", s.match.Ball.Vel)
	}
}

func TestFreeBallStaysInBoundsAwayFromMouth(t *testing.T) {
	s := newTestState(t)
	halfL := s.cfg.PitchW/2 + BallRadius
	halfW := s.cfg.PitchH/2 + BallRadius
	for i := range 72 {
		dir := vec.FromAngle(float64(i) * math.Pi / 36)
		s.match.Ball.Pos = vec.New(0, s.cfg.GoalHalfW+5)
		s.match.Ball.Vel = dir.Scale(90)
		for range 600 {
			res := s.integrateFreeBall(testTickMs / 1000)
			if res.scored {
				break
			}
			b := s.match.Ball
			if math.Abs(b.Pos.Y) <= s.cfg.GoalHalfW {
				continue
			}
			if math.Abs(b.Pos.X) > halfL || math.Abs(b.Pos.Y) > halfW {
				t.Fatalf("ball escaped pitch: dir=%d pos=%+v", i, b.Pos)
			}
		}
	}
}

func TestFrictionBringsBallToExactRest(t *testing.T) {
	s := newTestState(t)
	s.match.Ball.Vel = vec.New(5, 0)
	for range 600 {
		s.integrateFreeBall(testTickMs / 1000)
	}
	if s.match.Ball.Vel != (vec.Vec2{}) {
		t.Fatalf("expected exact rest, got vel=%+v", s.match.Ball.Vel)
	}
}

func TestZeroSpeedKickStillMeetsMinimum(t *testing.T) {
	s := newTestState(t)
	p := homeForward(s)
	s.giveBall(p)
	s.attachBall(p)

	s.releaseBallWithKick(p, vec.New(1, 0), 0)
	if got := s.match.Ball.Vel.Len(); got < MinKickSpeed-1e-9 {
		t.Fatalf("expected at least %f, got=%f", MinKickSpeed, got)
	}

	// Running hard against the kick must not cancel it either.
	s.giveBall(p)
	p.Vel = vec.New(-30, 0)
	s.releaseBallWithKick(p, vec.New(1, 0), 0)
	if got := s.match.Ball.Vel.Len(); got < MinKickSpeed-1e-9 {
		t.Fatalf("expected at least %f against the run, got=%f", MinKickSpeed, got)
	}
}

func TestKickCarriesKickerVelocity(t *testing.T) {
	s := newTestState(t)
	p := homeForward(s)
	s.giveBall(p)
	p.Vel = vec.New(10, 0)

	s.releaseBallWithKick(p, vec.New(1, 0), 30)
	if got := s.match.Ball.Vel.X; math.Abs(got-(30+10*KickerVelocityCarry)) > 1e-9 {
		t.Fatalf("unexpected kick velocity %f", got)
	}
}

func TestKickerCannotReclaimDuringImmunity(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	p.Pos = vec.Vec2{}
	s.giveBall(p)
	s.attachBall(p)

	s.releaseBallWithKick(p, vec.New(1, 0), 0)
	s.match.Ball.Pos = p.Pos
	s.match.Ball.Vel = vec.Vec2{}

	if got := s.tryClaimBall([]*Player{p}); got != nil {
		t.Fatal("kicker reclaimed through the claim path")
	}
	if got := s.tryImmediatePickup([]*Player{p}); got != nil {
		t.Fatal("kicker reclaimed through immediate pickup")
	}
	if !s.match.Ball.Free() {
		t.Fatal("expected ball to stay free")
	}

	s.tickTimers(KickImmunityMs + 1)
	if got := s.tryClaimBall([]*Player{p}); got != p {
		t.Fatal("expected kicker to claim after immunity expires")
	}
}

func TestClaimRespectsSpeedCeilingButPickupDoesNot(t *testing.T) {
	s := newTestState(t)
	park(s)
	p := homeForward(s)
	p.Pos = vec.Vec2{}
	s.match.Ball.Pos = vec.New(PlayerRadius+BallRadius, 0)
	s.match.Ball.Vel = vec.New(ClaimMaxSpeed+5, 0)

	if got := s.tryClaimBall([]*Player{p}); got != nil {
		t.Fatal("fast ball must not be claimed")
	}
	if got := s.tryImmediatePickup([]*Player{p}); got != p {
		t.Fatal("touch pickup should ignore ball speed")
	}
	checkInvariants(t, s)
}

func TestGiveBallKeepsSingleOwner(t *testing.T) {
	s := newTestState(t)
	a := homeForward(s)
	b := awayForward(s)
	s.giveBall(a)
	s.giveBall(b)
	if a.HasBall {
		t.Fatal("previous owner kept the ball flag")
	}
	if s.match.Possession.TeamID != s.match.Away.ID || s.match.Possession.PlayerID != b.ID {
		t.Fatalf("unexpected possession %+v", s.match.Possession)
	}
	checkInvariants(t, s)
}

func TestIntegratePlayerAllowsSprintAboveNominalCap(t *testing.T) {
	p := &Player{MaxSpeed: 10, Accel: 1000}
	desired := vec.New(13.5, 0)
	for range 60 {
		integratePlayer(p, desired, testTickMs/1000)
	}
	if got := p.Vel.Len(); math.Abs(got-13.5) > 1e-6 {
		t.Fatalf("expected sprint speed 13.5, got=%f", got)
	}

	for range 60 {
		integratePlayer(p, vec.New(0, 5), testTickMs/1000)
	}
	if got := p.Vel.Len(); got > 10+1e-9 {
		t.Fatalf("expected nominal cap once sprint ends, got=%f", got)
	}
	if math.Abs(p.Facing-math.Pi/2) > 1e-6 {
		t.Fatalf("expected facing along +y, got=%f", p.Facing)
	}
}

func TestIntegratePlayerAccelerationIsBounded(t *testing.T) {
	p := &Player{MaxSpeed: 15, Accel: 60}
	integratePlayer(p, vec.New(15, 0), 0.1)
	if got := p.Vel.X; math.Abs(got-6) > 1e-9 {
		t.Fatalf("expected one step of accel (6), got=%f", got)
	}
}

func TestContainPlayerInPitch(t *testing.T) {
	cfg := DefaultConfig()
	p := &Player{Pos: vec.New(100, -100), Vel: vec.New(5, -5)}
	containPlayerInPitch(cfg, p)
	if p.Pos.X != cfg.PitchW/2-PlayerRadius || p.Pos.Y != -cfg.PitchH/2+PlayerRadius {
		t.Fatalf("unexpected clamp %+v", p.Pos)
	}
	if p.Vel != (vec.Vec2{}) {
		t.Fatalf("expected wall-bound velocity dropped, got=%+v", p.Vel)
	}
}

func TestBumpPushesBallAwayFromRunner(t *testing.T) {
	s := newTestState(t)
	p := homeForward(s)
	p.Pos = vec.Vec2{}
	p.Vel = vec.New(10, 0)
	s.match.Ball.Pos = vec.New(1.5, 0)
	s.match.Ball.Vel = vec.Vec2{}

	s.bumpBall(p)
	if s.match.Ball.Vel.X <= 10 {
		t.Fatalf("expected ball knocked ahead faster than runner, got=%+v", s.match.Ball.Vel)
	}
	if d := s.match.Ball.Pos.Dist(p.Pos); d < PlayerRadius+BallRadius-1e-9 {
		t.Fatalf("expected ball separated from body, dist=%f", d)
	}
}
