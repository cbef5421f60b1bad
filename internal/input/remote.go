package input

import (
	"fmt"
	"sync"

	"github.com/bturcotte520/kilocup/internal/vec"
)

// Device identifies a physical input family. The order of the constants is
// the merge priority.
type Device int

const (
	DeviceKeyboard Device = iota
	DeviceGamepad
	DeviceTouch
)

// Devices lists every device in merge priority order.
var Devices = []Device{DeviceKeyboard, DeviceGamepad, DeviceTouch}

func (d Device) String() string {
	switch d {
	case DeviceKeyboard:
		return "keyboard"
	case DeviceGamepad:
		return "gamepad"
	case DeviceTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// ParseDevice maps a wire name onto a Device.
func ParseDevice(name string) (Device, error) {
	for _, d := range Devices {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown input device %q", name)
}

// Held is the raw hold state a remote client reports for one device.
type Held struct {
	Move   vec.Vec2
	Sprint bool
	Action bool
	Shoot  bool
	Pause  bool // edge: true means "pause was pressed since the last report"
}

// RemoteSource adapts hold reports arriving from a client connection into a
// Snapshot with edge semantics. Safe for one writer and one reader goroutine.
type RemoteSource struct {
	mu       sync.Mutex
	device   Device
	state    Snapshot
	disposed bool
}

func NewRemoteSource(d Device) *RemoteSource {
	return &RemoteSource{device: d}
}

func (r *RemoteSource) Device() Device {
	return r.device
}

// Apply records a new hold report. Press and release edges are derived from
// hold transitions and latch until Take or ClearEdges, so a tap shorter than a frame
// still produces both edges.
func (r *RemoteSource) Apply(h Held) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}

	r.state.Move = h.Move.ClampLen(1)
	r.state.Sprint = h.Sprint

	if h.Action && !r.state.ActionDown {
		r.state.ActionPressed = true
	}
	if !h.Action && r.state.ActionDown {
		r.state.ActionReleased = true
	}
	r.state.ActionDown = h.Action

	if h.Shoot && !r.state.ShootDown {
		r.state.ShootPressed = true
	}
	if !h.Shoot && r.state.ShootDown {
		r.state.ShootReleased = true
	}
	r.state.ShootDown = h.Shoot

	if h.Pause {
		r.state.PausePressed = true
	}
}

func (r *RemoteSource) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *RemoteSource) Take() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	r.state.ClearEdges()
	return s
}

func (r *RemoteSource) ClearEdges() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.ClearEdges()
}

// Dispose drops all held state and ignores further reports.
func (r *RemoteSource) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	r.state = Snapshot{}
}

// Static is a fixed snapshot source, used by scripted hosts and tests.
type Static struct {
	Snapshot Snapshot
}

func (s *Static) State() Snapshot { return s.Snapshot }
func (s *Static) ClearEdges()     { s.Snapshot.ClearEdges() }
func (s *Static) Dispose()        { s.Snapshot = Snapshot{} }

func (s *Static) Take() Snapshot {
	out := s.Snapshot
	s.Snapshot.ClearEdges()
	return out
}
