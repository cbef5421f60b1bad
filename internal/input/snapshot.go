package input

import "github.com/bturcotte520/kilocup/internal/vec"

// MoveDeadzone is the stick magnitude below which movement counts as released.
const MoveDeadzone = 0.05

// Snapshot is the normalized per-frame control state the simulation consumes.
// *Down fields are holds; *Pressed/*Released are edges that stay set until
// ClearEdges is called by the host after a simulation step.
type Snapshot struct {
	Move   vec.Vec2 `json:"move" msgpack:"move"`
	Sprint bool     `json:"sprint" msgpack:"sprint"`

	ActionDown     bool `json:"action_down" msgpack:"action_down"`
	ActionPressed  bool `json:"action_pressed" msgpack:"action_pressed"`
	ActionReleased bool `json:"action_released" msgpack:"action_released"`

	ShootDown     bool `json:"shoot_down" msgpack:"shoot_down"`
	ShootPressed  bool `json:"shoot_pressed" msgpack:"shoot_pressed"`
	ShootReleased bool `json:"shoot_released" msgpack:"shoot_released"`

	PausePressed bool `json:"pause_pressed" msgpack:"pause_pressed"`
}

// ClearEdges resets every edge-triggered flag. Holds and movement are kept.
func (s *Snapshot) ClearEdges() {
	s.ActionPressed = false
	s.ActionReleased = false
	s.ShootPressed = false
	s.ShootReleased = false
	s.PausePressed = false
}

// Moving reports whether the movement vector is outside the deadzone.
func (s Snapshot) Moving() bool {
	return s.Move.Len() > MoveDeadzone
}

// Any reports whether the snapshot carries any recognized gameplay input.
// Pause is excluded so that unpausing does not also resume a kickoff.
func (s Snapshot) Any() bool {
	return s.Moving() || s.Sprint ||
		s.ActionDown || s.ActionPressed || s.ActionReleased ||
		s.ShootDown || s.ShootPressed || s.ShootReleased
}

// Source is a device adapter. Implementations live outside the simulation core.
// Take returns the current state and clears the edges it returned in one
// step, so an edge latched after the read survives for the next one.
type Source interface {
	State() Snapshot
	Take() Snapshot
	ClearEdges()
	Dispose()
}

// Merge combines sources in priority order: movement comes from the first
// source with a non-zero stick, every hold and edge is OR'd. Source edges are
// left untouched.
func Merge(sources ...Source) Snapshot {
	snaps := make([]Snapshot, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			snaps = append(snaps, src.State())
		}
	}
	return combine(snaps)
}

// Take merges like Merge but consumes the edges of every source.
func Take(sources ...Source) Snapshot {
	snaps := make([]Snapshot, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			snaps = append(snaps, src.Take())
		}
	}
	return combine(snaps)
}

func combine(snaps []Snapshot) Snapshot {
	var out Snapshot
	moveSet := false
	for _, s := range snaps {
		if !moveSet && s.Moving() {
			out.Move = s.Move.ClampLen(1)
			moveSet = true
		}
		out.Sprint = out.Sprint || s.Sprint
		out.ActionDown = out.ActionDown || s.ActionDown
		out.ActionPressed = out.ActionPressed || s.ActionPressed
		out.ActionReleased = out.ActionReleased || s.ActionReleased
		out.ShootDown = out.ShootDown || s.ShootDown
		out.ShootPressed = out.ShootPressed || s.ShootPressed
		out.ShootReleased = out.ShootReleased || s.ShootReleased
		out.PausePressed = out.PausePressed || s.PausePressed
	}
	return out
}
