package simulation

import (
	"testing"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/vec"
)

func looseBallAt(s *simState, pos, vel vec.Vec2) {
	s.freeBall()
	s.match.Ball.Pos = pos
	s.match.Ball.Vel = vel
}

func TestDangerousShotHandsControlToGoalkeeper(t *testing.T) {
	s := newTestState(t)
	park(s)
	looseBallAt(s, vec.New(-30, 0), vec.New(-30, 0))

	s.resolveSwitching(input.Snapshot{})

	gk := s.match.Home.Goalkeeper()
	if s.match.ControlledID != gk.ID {
		t.Fatalf("expected keeper control, got=%s", s.match.ControlledID)
	}
}

func TestShotWideOfGoalIsNotDangerous(t *testing.T) {
	s := newTestState(t)
	park(s)
	looseBallAt(s, vec.New(-30, 0), vec.New(-30, 30))

	if s.dangerousShot(s.match.Home) {
		t.Fatal("expected a shot heading for the corner to be harmless")
	}
	looseBallAt(s, vec.New(30, 0), vec.New(-30, 0))
	if s.dangerousShot(s.match.Home) {
		t.Fatal("expected a ball in the opponent half to be harmless")
	}
}

func TestControlLeavesKeeperOnceDangerPasses(t *testing.T) {
	s := newTestState(t)
	park(s)
	gk := s.match.Home.Goalkeeper()
	s.setControlled(gk)
	looseBallAt(s, vec.Vec2{}, vec.Vec2{})
	mf := s.match.Home.Players[2]
	mf.Pos = vec.New(0, 5)

	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != mf.ID {
		t.Fatalf("expected control back on %s, got=%s", mf.ID, s.match.ControlledID)
	}
}

func TestControlLeavesKeeperWhenOpponentHasBall(t *testing.T) {
	s := newTestState(t)
	park(s)
	gk := s.match.Home.Goalkeeper()
	s.setControlled(gk)
	fw := awayForward(s)
	fw.Pos = vec.New(-20, 0)
	s.giveBall(fw)
	s.match.Ball.Pos = fw.Pos
	df := s.match.Home.Players[1]
	df.Pos = vec.New(-25, 3)

	s.switchCooldownMs = 50
	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != gk.ID {
		t.Fatalf("switched during cooldown to %s", s.match.ControlledID)
	}

	s.switchCooldownMs = 0
	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != df.ID {
		t.Fatalf("expected control on %s, got=%s", df.ID, s.match.ControlledID)
	}
	if s.switchCooldownMs != AutoSwitchCooldownMs {
		t.Fatalf("expected auto cooldown, got=%f", s.switchCooldownMs)
	}
}

func TestKeeperWithBallKeepsControl(t *testing.T) {
	s := newTestState(t)
	park(s)
	gk := s.match.Home.Goalkeeper()
	gk.Pos = vec.New(-50, 0)
	s.giveBall(gk)
	s.setControlled(gk)

	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != gk.ID {
		t.Fatalf("expected the carrying keeper to stay controlled, got=%s", s.match.ControlledID)
	}
}

func TestAutoSwitchHysteresis(t *testing.T) {
	s := newTestState(t)
	park(s)
	looseBallAt(s, vec.Vec2{}, vec.Vec2{})
	ctrl := homeForward(s)
	ctrl.Pos = vec.New(0, 6)
	mf := s.match.Home.Players[2]
	mf.Pos = vec.New(0, -4)

	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != ctrl.ID {
		t.Fatalf("switched inside the hysteresis band to %s", s.match.ControlledID)
	}

	mf.Pos = vec.New(0, -2)
	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != mf.ID {
		t.Fatalf("expected switch to %s, got=%s", mf.ID, s.match.ControlledID)
	}
	if s.switchCooldownMs != AutoSwitchCooldownMs {
		t.Fatalf("expected auto cooldown, got=%f", s.switchCooldownMs)
	}

	// Back within range but cooling down.
	ctrl.Pos = vec.New(0, 0.5)
	s.resolveSwitching(input.Snapshot{})
	if s.match.ControlledID != mf.ID {
		t.Fatal("expected cooldown to hold control")
	}
}

func TestManualSwitchFollowsStickDirection(t *testing.T) {
	s := newTestState(t)
	park(s)
	looseBallAt(s, vec.Vec2{}, vec.Vec2{})
	mf := s.match.Home.Players[2]
	mf.Pos = vec.New(-5, 0)
	df := s.match.Home.Players[1]
	df.Pos = vec.New(8, 0)

	s.resolveSwitching(input.Snapshot{Move: vec.New(1, 0), ActionPressed: true, ActionDown: true})
	if s.match.ControlledID != df.ID {
		t.Fatalf("expected stick pick %s, got=%s", df.ID, s.match.ControlledID)
	}
	if s.manualSwitchCooldownMs != ManualSwitchCooldownMs {
		t.Fatalf("expected manual cooldown, got=%f", s.manualSwitchCooldownMs)
	}
	if s.switchCooldownMs < ManualSwitchHoldOffMs {
		t.Fatalf("expected auto hold-off, got=%f", s.switchCooldownMs)
	}

	// A second press during the cooldown is ignored.
	s.resolveSwitching(input.Snapshot{ActionPressed: true})
	if s.match.ControlledID != df.ID {
		t.Fatal("expected manual cooldown to block a second switch")
	}

	s.tickTimers(ManualSwitchCooldownMs)
	s.resolveSwitching(input.Snapshot{ActionPressed: true})
	if s.match.ControlledID != mf.ID {
		t.Fatalf("expected nearest pick %s without a stick, got=%s", mf.ID, s.match.ControlledID)
	}
}

func TestActionWithBallDoesNotSwitch(t *testing.T) {
	s := newTestState(t)
	park(s)
	ctrl := homeForward(s)
	s.giveBall(ctrl)
	s.attachBall(ctrl)
	s.match.Home.Players[2].Pos = s.match.Ball.Pos.Add(vec.New(1, 0))

	s.resolveSwitching(input.Snapshot{ActionPressed: true})
	if s.match.ControlledID != ctrl.ID {
		t.Fatalf("carrier lost control to %s", s.match.ControlledID)
	}
}

func TestControlFollowsHomePossession(t *testing.T) {
	s := newTestState(t)
	park(s)
	mf := s.match.Home.Players[2]
	s.giveBall(mf)
	s.followPossession()
	if s.match.ControlledID != mf.ID {
		t.Fatalf("expected control on carrier %s, got=%s", mf.ID, s.match.ControlledID)
	}

	before := s.match.ControlledID
	s.giveBall(awayForward(s))
	s.followPossession()
	if s.match.ControlledID != before {
		t.Fatal("away possession must not move home control")
	}
}
