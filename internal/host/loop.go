package host

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

// Engine is the part of the simulation the loop drives.
type Engine interface {
	Step(dtMs float64, in input.Snapshot) []simulation.Event
	Config() simulation.Config
	Finished() bool
}

// StepHook sees every step exactly as the engine did. Recorders use it.
type StepHook func(dtMs float64, in input.Snapshot)

// Loop runs fixed timesteps against wall-clock frames. It is not safe for
// concurrent use; Run and Advance must be called from one goroutine.
type Loop struct {
	engine  Engine
	sources []input.Source
	log     *zap.Logger

	tickMs     float64
	maxFrameMs float64
	accumMs    float64

	onStep   StepHook
	onEvents func([]simulation.Event)
	onFrame  func(steps int)
}

type Option func(*Loop)

func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.log = l
		}
	}
}

func WithStepHook(h StepHook) Option {
	return func(lp *Loop) { lp.onStep = h }
}

// WithEvents registers a callback for the events of each frame.
func WithEvents(fn func([]simulation.Event)) Option {
	return func(lp *Loop) { lp.onEvents = fn }
}

// WithFrameHook runs fn at the end of every Advance, after events were
// relayed. Broadcasters hang off it so they share the loop goroutine.
func WithFrameHook(fn func(steps int)) Option {
	return func(lp *Loop) { lp.onFrame = fn }
}

// New builds a loop over engine. Sources are merged in the given order, so
// the first one pushing the stick decides movement.
func New(engine Engine, sources []input.Source, opts ...Option) *Loop {
	cfg := engine.Config()
	l := &Loop{
		engine:     engine,
		sources:    sources,
		log:        zap.NewNop(),
		tickMs:     cfg.TickMs,
		maxFrameMs: cfg.MaxFrameMs,
	}
	if l.tickMs <= 0 {
		l.tickMs = simulation.DefaultConfig().TickMs
	}
	if l.maxFrameMs <= 0 {
		l.maxFrameMs = simulation.DefaultConfig().MaxFrameMs
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Advance feeds elapsedMs of wall time into the accumulator and runs as many
// fixed steps as fit. Frames longer than MaxFrameMs are clamped so a stall
// does not turn into a burst of catch-up steps. Sources are read once per
// frame and only the edges read are consumed; edges are cleared after the
// first step so a press seen by one step is never seen again. Reports that
// arrive while the frame runs stay latched for the next frame.
func (l *Loop) Advance(elapsedMs float64) int {
	if elapsedMs <= 0 || math.IsNaN(elapsedMs) {
		return 0
	}
	l.accumMs += math.Min(elapsedMs, l.maxFrameMs)

	if l.accumMs < l.tickMs {
		if l.onFrame != nil {
			l.onFrame(0)
		}
		return 0
	}

	in := input.Take(l.sources...)
	steps := 0
	var events []simulation.Event
	for l.accumMs >= l.tickMs {
		l.accumMs -= l.tickMs
		events = append(events, l.engine.Step(l.tickMs, in)...)
		if l.onStep != nil {
			l.onStep(l.tickMs, in)
		}
		steps++

		in.ClearEdges()
	}

	if len(events) > 0 && l.onEvents != nil {
		l.onEvents(events)
	}
	if l.onFrame != nil {
		l.onFrame(steps)
	}
	return steps
}

// Run advances the loop once per frame until ctx is done or the match ends.
func (l *Loop) Run(ctx context.Context, frame time.Duration) error {
	if frame <= 0 {
		frame = time.Second / 60
	}
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			l.Advance(float64(elapsed) / float64(time.Millisecond))
			if l.engine.Finished() {
				l.log.Info("match finished, stopping loop")
				return nil
			}
		}
	}
}

// Close disposes every source.
func (l *Loop) Close() {
	for _, src := range l.sources {
		src.Dispose()
	}
}
