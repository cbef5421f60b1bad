package telemetry

import (
	"sync"

	"github.com/bturcotte520/kilocup/internal/shared/types"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

const (
	EventGoal     = "goal"
	EventFullTime = "full_time"

	// RecentCapacity bounds the in-memory event ring.
	RecentCapacity = 1000
)

// Store keeps recent telemetry in memory with running totals.
type Store struct {
	mu          sync.RWMutex
	recent      []types.TelemetryEvent
	totalIngest int64
	byType      map[string]int64
	matches     map[string]*types.MatchSummary
}

func NewStore() *Store {
	return &Store{
		recent:  make([]types.TelemetryEvent, 0, 512),
		byType:  make(map[string]int64),
		matches: make(map[string]*types.MatchSummary),
	}
}

type Summary struct {
	Total   int64            `json:"total"`
	ByType  map[string]int64 `json:"by_type"`
	Matches int              `json:"matches"`
}

func (s *Store) Ingest(ev types.TelemetryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalIngest++
	s.byType[ev.EventType]++
	s.recent = append(s.recent, ev)
	if len(s.recent) > RecentCapacity {
		s.recent = s.recent[len(s.recent)-RecentCapacity:]
	}
	if ev.MatchID != "" {
		s.trackMatch(ev)
	}
}

func (s *Store) trackMatch(ev types.TelemetryEvent) {
	m, ok := s.matches[ev.MatchID]
	if !ok {
		m = &types.MatchSummary{MatchID: ev.MatchID, Goals: map[string]int64{}, FirstSeen: ev.Timestamp}
		s.matches[ev.MatchID] = m
	}
	m.Events++
	m.LastSeen = max(m.LastSeen, ev.Timestamp)

	switch ev.EventType {
	case EventGoal:
		if team, ok := ev.Payload["scoring_team_id"].(string); ok && team != "" {
			m.Goals[team]++
		}
	case EventFullTime:
		m.Final = &simulation.Score{
			Home: payloadInt(ev.Payload, "home"),
			Away: payloadInt(ev.Payload, "away"),
		}
		m.FinishedAt = ev.Timestamp
	}
}

// payloadInt reads a number that may have been through JSON (float64) or
// not (int).
func payloadInt(p map[string]interface{}, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Recent returns up to limit of the newest events, oldest first.
func (s *Store) Recent(limit int) []types.TelemetryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]types.TelemetryEvent, limit)
	copy(out, s.recent[len(s.recent)-limit:])
	return out
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byType := make(map[string]int64, len(s.byType))
	for k, v := range s.byType {
		byType[k] = v
	}
	return Summary{Total: s.totalIngest, ByType: byType, Matches: len(s.matches)}
}

// Match returns a copy of the summary for one match.
func (s *Store) Match(id string) (types.MatchSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return types.MatchSummary{}, false
	}
	out := *m
	out.Goals = make(map[string]int64, len(m.Goals))
	for k, v := range m.Goals {
		out.Goals[k] = v
	}
	if m.Final != nil {
		final := *m.Final
		out.Final = &final
	}
	return out, true
}
