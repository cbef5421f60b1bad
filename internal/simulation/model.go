package simulation

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/bturcotte520/kilocup/internal/vec"
)

// Config holds pitch geometry and timing. Values are preconditions and are not validated.
type Config struct {
	PitchW          float64 `json:"pitch_w" msgpack:"pitch_w"`
	PitchH          float64 `json:"pitch_h" msgpack:"pitch_h"`
	GoalHalfW       float64 `json:"goal_half_w" msgpack:"goal_half_w"`
	TickMs          float64 `json:"tick_ms" msgpack:"tick_ms"`
	MaxFrameMs      float64 `json:"max_frame_ms" msgpack:"max_frame_ms"`
	UISampleHz      float64 `json:"ui_sample_hz" msgpack:"ui_sample_hz"`
	MatchDurationMs float64 `json:"match_duration_ms" msgpack:"match_duration_ms"`
	KickoffHoldMs   float64 `json:"kickoff_hold_ms" msgpack:"kickoff_hold_ms"`
	Seed            int64   `json:"seed" msgpack:"seed"`
}

// DefaultConfig returns the arcade defaults.
func DefaultConfig() Config {
	return Config{
		PitchW:          120,
		PitchH:          80,
		GoalHalfW:       10,
		TickMs:          1000.0 / 60.0,
		MaxFrameMs:      250,
		UISampleHz:      10,
		MatchDurationMs: 180_000,
		KickoffHoldMs:   1200,
		Seed:            1,
	}
}

// Role is a player's position in the fixed formation.
type Role int

const (
	RoleGoalkeeper Role = iota
	RoleDefender
	RoleMidfielder
	RoleForward
)

func (r Role) String() string {
	switch r {
	case RoleGoalkeeper:
		return "goalkeeper"
	case RoleDefender:
		return "defender"
	case RoleMidfielder:
		return "midfielder"
	case RoleForward:
		return "forward"
	default:
		return "unknown"
	}
}

// Phase is the match clock phase. Only FirstHalf and FullTime are used; the
// match runs as a single period.
type Phase int

const (
	PhasePreKickoff Phase = iota
	PhaseFirstHalf
	PhaseHalfTime
	PhaseSecondHalf
	PhaseFullTime
)

func (p Phase) String() string {
	switch p {
	case PhasePreKickoff:
		return "pre_kickoff"
	case PhaseFirstHalf:
		return "first_half"
	case PhaseHalfTime:
		return "half_time"
	case PhaseSecondHalf:
		return "second_half"
	case PhaseFullTime:
		return "full_time"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for c := PhasePreKickoff; c <= PhaseFullTime; c++ {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Kit is the pair of team colours.
type Kit struct {
	Primary   string `json:"primary" msgpack:"primary"`
	Secondary string `json:"secondary" msgpack:"secondary"`
}

// TeamIdentity is supplied by the match initializer.
type TeamIdentity struct {
	Name   string `json:"name" msgpack:"name"`
	Code   string `json:"code" msgpack:"code"`
	Emblem string `json:"emblem" msgpack:"emblem"`
	Kit    Kit    `json:"kit" msgpack:"kit"`
}

// HomeIdentity is the human-controlled side.
var HomeIdentity = TeamIdentity{
	Name:   "Kilo",
	Code:   "KIL",
	Emblem: "kilo",
	Kit:    Kit{Primary: "#f2c230", Secondary: "#1a1a2e"},
}

// DefaultOpponent is used when the initializer supplies no identity.
var DefaultOpponent = TeamIdentity{
	Name:   "Rovers",
	Code:   "ROV",
	Emblem: "rovers",
	Kit:    Kit{Primary: "#2a6fdb", Secondary: "#ffffff"},
}

// awayKits are the colours a named opponent can be given. None clashes with
// the home kit or the default opponent's.
var awayKits = []Kit{
	{Primary: "#c0392b", Secondary: "#ffffff"},
	{Primary: "#1e8449", Secondary: "#f4f6f7"},
	{Primary: "#6c3483", Secondary: "#f7dc6f"},
	{Primary: "#17202a", Secondary: "#e67e22"},
	{Primary: "#ecf0f1", Secondary: "#c0392b"},
}

// NewOpponent builds an identity for a named away side. The code defaults to
// the first three letters of the name, and the emblem and kit are derived
// from the name so the same opponent always looks the same. An empty name
// yields DefaultOpponent.
func NewOpponent(name, code string) TeamIdentity {
	name = strings.TrimSpace(name)
	if name == "" || name == DefaultOpponent.Name {
		return DefaultOpponent
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = strings.ToUpper(name[:min(3, len(name))])
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(name)))
	return TeamIdentity{
		Name:   name,
		Code:   code,
		Emblem: strings.Join(strings.Fields(strings.ToLower(name)), "-"),
		Kit:    awayKits[h.Sum32()%uint32(len(awayKits))],
	}
}

// Player is one footballer on the pitch. Both sides use the same struct.
type Player struct {
	ID        string
	Name      string
	TeamID    string
	Role      Role
	Slot      int
	Pos       vec.Vec2
	Vel       vec.Vec2
	Facing    float64
	Stamina   float64
	HasBall   bool
	MaxSpeed  float64
	Accel     float64
	KickPower float64
}

// Ball is the single match ball, either owned by a player or free.
type Ball struct {
	Pos    vec.Vec2
	Vel    vec.Vec2
	Radius float64
	// OwnerID is empty while the ball is free.
	OwnerID         string
	LastTouchTeamID string
	// ImmuneID cannot claim the ball while ImmuneMs > 0.
	ImmuneID string
	ImmuneMs float64
}

func (b *Ball) Free() bool {
	return b.OwnerID == ""
}

// Team is one side with its identity and five players.
type Team struct {
	ID       string
	Identity TeamIdentity
	// AttackDir is +1 when attacking +x, -1 when attacking -x.
	AttackDir float64
	Human     bool
	Players   []*Player
}

// Goalkeeper returns the team's keeper, or nil.
func (t *Team) Goalkeeper() *Player {
	for _, p := range t.Players {
		if p.Role == RoleGoalkeeper {
			return p
		}
	}
	return nil
}

// Possession mirrors the ball owner. Nil when the ball is free.
type Possession struct {
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
}

// Score is the goal tally of each side.
type Score struct {
	Home int `json:"home" msgpack:"home"`
	Away int `json:"away" msgpack:"away"`
}

// Clock tracks elapsed match time against the configured duration.
type Clock struct {
	ElapsedMs float64
	TotalMs   float64
	Phase     Phase
}

// MatchState is one match. Players and teams are kept in fixed order; the
// lookup maps are never iterated.
type MatchState struct {
	Home         *Team
	Away         *Team
	Score        Score
	Clock        Clock
	Ball         Ball
	Possession   *Possession
	ControlledID string
	LastEvent    string

	all     []*Player
	players map[string]*Player
	teams   map[string]*Team
}

func (m *MatchState) Player(id string) *Player {
	if id == "" {
		return nil
	}
	return m.players[id]
}

func (m *MatchState) Team(id string) *Team {
	return m.teams[id]
}

// Opponent returns the other team.
func (m *MatchState) Opponent(t *Team) *Team {
	if t == m.Home {
		return m.Away
	}
	return m.Home
}

// AllPlayers returns home players followed by away players.
func (m *MatchState) AllPlayers() []*Player {
	return m.all
}
