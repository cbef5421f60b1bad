package telemetry

import (
	"time"

	"github.com/google/uuid"

	"github.com/bturcotte520/kilocup/internal/shared/types"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

// FromMatchEvent converts a simulation event into a telemetry event.
func FromMatchEvent(matchID string, ev simulation.Event, at time.Time) types.TelemetryEvent {
	out := types.TelemetryEvent{
		EventID:   uuid.NewString(),
		MatchID:   matchID,
		Timestamp: at.UTC().UnixMilli(),
		Payload:   map[string]interface{}{"text": ev.Message()},
	}
	switch e := ev.(type) {
	case simulation.GoalEvent:
		out.EventType = EventGoal
		out.Payload["scoring_team_id"] = e.ScoringTeamID
		out.Payload["home"] = e.Score.Home
		out.Payload["away"] = e.Score.Away
	case simulation.FullTimeEvent:
		out.EventType = EventFullTime
		out.Payload["home"] = e.Score.Home
		out.Payload["away"] = e.Score.Away
	default:
		out.EventType = string(ev.Kind())
	}
	return out
}
