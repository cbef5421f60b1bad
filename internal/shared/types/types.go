package types

import "github.com/bturcotte520/kilocup/internal/simulation"

// HeldInput is the hold state of one input device as a client sees it.
type HeldInput struct {
	Sequence uint64  `json:"sequence"`
	MoveX    float64 `json:"move_x"` // -1..1
	MoveY    float64 `json:"move_y"` // -1..1
	Sprint   bool    `json:"sprint"`
	Action   bool    `json:"action"`
	Shoot    bool    `json:"shoot"`
	Pause    bool    `json:"pause"` // pressed since the previous report
}

// ClientEnvelope is sent from client to server.
type ClientEnvelope struct {
	Type     string     `json:"type"`             // input|ping
	Device   string     `json:"device,omitempty"` // keyboard|gamepad|touch
	Input    *HeldInput `json:"input,omitempty"`
	ClientMS int64      `json:"client_ms,omitempty"`
}

// MatchInfo describes a freshly created match.
type MatchInfo struct {
	MatchID string              `json:"match_id"`
	Home    simulation.TeamView `json:"home"`
	Away    simulation.TeamView `json:"away"`
	Config  simulation.Config   `json:"config"`
}

// MatchEvent is the wire form of a simulation event.
type MatchEvent struct {
	Kind          string           `json:"kind"` // GOAL|FULL_TIME
	Text          string           `json:"text"`
	ScoringTeamID string           `json:"scoring_team_id,omitempty"`
	Score         simulation.Score `json:"score"`
}

// NewMatchEvent flattens a simulation event for the wire.
func NewMatchEvent(ev simulation.Event) MatchEvent {
	out := MatchEvent{Kind: string(ev.Kind()), Text: ev.Message()}
	switch e := ev.(type) {
	case simulation.GoalEvent:
		out.ScoringTeamID = e.ScoringTeamID
		out.Score = e.Score
	case simulation.FullTimeEvent:
		out.Score = e.Score
	}
	return out
}

// ServerEnvelope is sent from server to client.
type ServerEnvelope struct {
	Type     string                `json:"type"` // welcome|frame|view|event|pong|error
	Tick     uint64                `json:"tick,omitempty"`
	Match    *MatchInfo            `json:"match,omitempty"`
	Frame    *simulation.Frame     `json:"frame,omitempty"`
	View     *simulation.ViewModel `json:"view,omitempty"`
	Event    *MatchEvent           `json:"event,omitempty"`
	ServerMS int64                 `json:"server_ms,omitempty"`
	Message  string                `json:"message,omitempty"`
	AckSeq   uint64                `json:"ack_seq,omitempty"`
}

// TelemetryEvent represents a gameplay/platform event.
type TelemetryEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	MatchID   string                 `json:"match_id,omitempty"`
	PlayerID  string                 `json:"player_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// MatchSummary aggregates the telemetry seen for one match.
type MatchSummary struct {
	MatchID    string            `json:"match_id"`
	Events     int64             `json:"events"`
	Goals      map[string]int64  `json:"goals"`
	Final      *simulation.Score `json:"final,omitempty"`
	FirstSeen  int64             `json:"first_seen"`
	LastSeen   int64             `json:"last_seen"`
	FinishedAt int64             `json:"finished_at,omitempty"`
}
