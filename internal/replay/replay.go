// Package replay records the inputs of a match and re-simulates them. A
// match is a pure function of its config, opponent and per-step inputs, so
// a recording is enough to rebuild the final state exactly.
package replay

import (
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

// FormatVersion is bumped whenever the encoded layout changes.
const FormatVersion = 1

type Header struct {
	Version    int                     `msgpack:"version"`
	MatchID    string                  `msgpack:"match_id"`
	Seed       int64                   `msgpack:"seed"`
	Config     simulation.Config       `msgpack:"config"`
	Opponent   simulation.TeamIdentity `msgpack:"opponent"`
	RecordedAt time.Time               `msgpack:"recorded_at"`
}

type Step struct {
	DtMs  float64        `msgpack:"dt"`
	Input input.Snapshot `msgpack:"in"`
}

type Recording struct {
	Header Header `msgpack:"header"`
	Steps  []Step `msgpack:"steps"`
}

// Recorder collects steps from a host loop. Hook it up with
// host.WithStepHook(rec.Record).
type Recorder struct {
	rec Recording
}

func NewRecorder(matchID string, cfg simulation.Config, opponent simulation.TeamIdentity) *Recorder {
	return &Recorder{rec: Recording{Header: Header{
		Version:    FormatVersion,
		MatchID:    matchID,
		Seed:       cfg.Seed,
		Config:     cfg,
		Opponent:   opponent,
		RecordedAt: time.Now().UTC(),
	}}}
}

func (r *Recorder) Record(dtMs float64, in input.Snapshot) {
	r.rec.Steps = append(r.rec.Steps, Step{DtMs: dtMs, Input: in})
}

func (r *Recorder) Len() int {
	return len(r.rec.Steps)
}

// Recording returns a copy of what has been recorded so far.
func (r *Recorder) Recording() Recording {
	out := r.rec
	out.Steps = append([]Step(nil), r.rec.Steps...)
	return out
}

func Encode(w io.Writer, rec Recording) error {
	if err := msgpack.NewEncoder(w).Encode(&rec); err != nil {
		return fmt.Errorf("encode replay: %w", err)
	}
	return nil
}

func Decode(r io.Reader) (Recording, error) {
	var rec Recording
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return Recording{}, fmt.Errorf("decode replay: %w", err)
	}
	if rec.Header.Version != FormatVersion {
		return Recording{}, fmt.Errorf("decode replay: unsupported version %d", rec.Header.Version)
	}
	return rec, nil
}

// Result is the outcome of a re-simulation.
type Result struct {
	Score    simulation.Score
	Events   []simulation.Event
	Frame    simulation.Frame
	Finished bool
}

// Play rebuilds the match from scratch and feeds it every recorded step.
func Play(rec Recording) (Result, error) {
	if rec.Header.Config.TickMs <= 0 {
		return Result{}, fmt.Errorf("play replay %s: invalid tick %f", rec.Header.MatchID, rec.Header.Config.TickMs)
	}
	cfg := rec.Header.Config
	cfg.Seed = rec.Header.Seed

	e := simulation.NewEngine(cfg, rec.Header.Opponent, simulation.WithMatchID(rec.Header.MatchID))
	var res Result
	for _, st := range rec.Steps {
		res.Events = append(res.Events, e.Step(st.DtMs, st.Input)...)
	}
	res.Score = e.Score()
	res.Frame = e.Frame()
	res.Finished = e.Finished()
	return res, nil
}
