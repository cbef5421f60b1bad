package simulation

import (
	"math"

	"github.com/bturcotte520/kilocup/internal/vec"
)

type TeamView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Emblem string `json:"emblem"`
	Kit    Kit    `json:"kit"`
}

// ViewModel is the low-frequency UI snapshot.
type ViewModel struct {
	Home                 TeamView    `json:"home"`
	Away                 TeamView    `json:"away"`
	Score                Score       `json:"score"`
	TimeRemainingMs      int64       `json:"time_remaining_ms"`
	Phase                Phase       `json:"phase"`
	Paused               bool        `json:"paused"`
	LastEvent            string      `json:"last_event"`
	CelebrationActive    bool        `json:"celebration_active"`
	ControlledPlayerName string      `json:"controlled_player_name"`
	Possession           *Possession `json:"possession,omitempty"`
}

func buildView(s *simState) ViewModel {
	m := s.match
	v := ViewModel{
		Home:              teamView(m.Home),
		Away:              teamView(m.Away),
		Score:             m.Score,
		TimeRemainingMs:   int64(math.Ceil(math.Max(0, m.Clock.TotalMs-m.Clock.ElapsedMs))),
		Phase:             m.Clock.Phase,
		Paused:            s.paused,
		LastEvent:         m.LastEvent,
		CelebrationActive: s.kickoffHoldMs > 0 || s.awaitInput,
	}
	if p := s.controlled(); p != nil {
		v.ControlledPlayerName = p.Name
	}
	if m.Possession != nil {
		pos := *m.Possession
		v.Possession = &pos
	}
	return v
}

func teamView(t *Team) TeamView {
	return TeamView{
		ID:     t.ID,
		Name:   t.Identity.Name,
		Code:   t.Identity.Code,
		Emblem: t.Identity.Emblem,
		Kit:    t.Identity.Kit,
	}
}

type PlayerFrame struct {
	ID         string   `json:"id" msgpack:"id"`
	TeamID     string   `json:"team_id" msgpack:"team_id"`
	Role       string   `json:"role" msgpack:"role"`
	Pos        vec.Vec2 `json:"pos" msgpack:"pos"`
	Vel        vec.Vec2 `json:"vel" msgpack:"vel"`
	Facing     float64  `json:"facing" msgpack:"facing"`
	HasBall    bool     `json:"has_ball" msgpack:"has_ball"`
	Controlled bool     `json:"controlled" msgpack:"controlled"`
}

type BallFrame struct {
	Pos     vec.Vec2 `json:"pos" msgpack:"pos"`
	Vel     vec.Vec2 `json:"vel" msgpack:"vel"`
	Radius  float64  `json:"radius" msgpack:"radius"`
	OwnerID string   `json:"owner_id,omitempty" msgpack:"owner_id"`
}

// Frame is a render snapshot. It shares nothing with the live state.
type Frame struct {
	Tick      uint64        `json:"tick" msgpack:"tick"`
	ElapsedMs float64       `json:"elapsed_ms" msgpack:"elapsed_ms"`
	Score     Score         `json:"score" msgpack:"score"`
	Players   []PlayerFrame `json:"players" msgpack:"players"`
	Ball      BallFrame     `json:"ball" msgpack:"ball"`
}

func buildFrame(s *simState) Frame {
	m := s.match
	f := Frame{
		Tick:      s.tick,
		ElapsedMs: m.Clock.ElapsedMs,
		Score:     m.Score,
		Players:   make([]PlayerFrame, 0, len(m.AllPlayers())),
		Ball: BallFrame{
			Pos:     m.Ball.Pos,
			Vel:     m.Ball.Vel,
			Radius:  m.Ball.Radius,
			OwnerID: m.Ball.OwnerID,
		},
	}
	for _, p := range m.AllPlayers() {
		f.Players = append(f.Players, PlayerFrame{
			ID:         p.ID,
			TeamID:     p.TeamID,
			Role:       p.Role.String(),
			Pos:        p.Pos,
			Vel:        p.Vel,
			Facing:     p.Facing,
			HasBall:    p.HasBall,
			Controlled: p.ID == m.ControlledID,
		})
	}
	return f
}
