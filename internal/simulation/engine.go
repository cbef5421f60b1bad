package simulation

import (
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/input"
)

// Engine owns one match. It is not safe for concurrent use; hosts drive it
// from a single goroutine and hand out View/Frame copies.
type Engine struct {
	matchID  string
	opponent TeamIdentity
	log      *zap.Logger
	state    *simState

	view        ViewModel
	viewAccumMs float64
	viewEveryMs float64
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMatchID(id string) Option {
	return func(e *Engine) {
		e.matchID = id
	}
}

// NewEngine sets up a match against opponent with the default rosters.
func NewEngine(cfg Config, opponent TeamIdentity, opts ...Option) *Engine {
	e := &Engine{
		matchID:  "local",
		opponent: opponent,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("match_id", e.matchID))
	e.state = newSimState(cfg, opponent, e.log)
	e.viewEveryMs = 100
	if cfg.UISampleHz > 0 {
		e.viewEveryMs = 1000 / cfg.UISampleHz
	}
	e.refreshView()
	return e
}

// Step advances the simulation by dtMs using the merged input snapshot.
// The caller must clear edge flags on its sources after every call.
func (e *Engine) Step(dtMs float64, in input.Snapshot) []Event {
	if dtMs <= 0 {
		return nil
	}
	wasPaused := e.state.paused
	lastEvent := e.state.match.LastEvent

	events := e.state.step(in, dtMs)

	e.viewAccumMs += dtMs
	if len(events) > 0 || wasPaused != e.state.paused || lastEvent != e.state.match.LastEvent ||
		e.viewAccumMs >= e.viewEveryMs {
		e.refreshView()
	}
	return events
}

// View returns the last materialized view model. It is refreshed at most
// UISampleHz times per simulated second, and immediately on events.
func (e *Engine) View() ViewModel {
	return e.view
}

func (e *Engine) refreshView() {
	e.view = buildView(e.state)
	e.viewAccumMs = 0
}

// Frame returns a copy of every body position for renderers.
func (e *Engine) Frame() Frame {
	return buildFrame(e.state)
}

func (e *Engine) MatchID() string        { return e.matchID }
func (e *Engine) Opponent() TeamIdentity { return e.opponent }
func (e *Engine) Config() Config         { return e.state.cfg }
func (e *Engine) Paused() bool           { return e.state.paused }
func (e *Engine) Phase() Phase           { return e.state.match.Clock.Phase }
func (e *Engine) Score() Score           { return e.state.match.Score }
func (e *Engine) Tick() uint64           { return e.state.tick }
func (e *Engine) Finished() bool         { return e.Phase() == PhaseFullTime }
func (e *Engine) Celebrating() bool      { return e.state.kickoffHoldMs > 0 || e.state.awaitInput }
func (e *Engine) HomeTeamID() string     { return e.state.match.Home.ID }
func (e *Engine) AwayTeamID() string     { return e.state.match.Away.ID }
