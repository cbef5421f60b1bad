package simulation

import "fmt"

type EventKind string

const (
	EventGoal     EventKind = "GOAL"
	EventFullTime EventKind = "FULL_TIME"
)

// Event is a discrete match event returned by Step. The set is closed:
// GoalEvent and FullTimeEvent are the only implementations.
type Event interface {
	Kind() EventKind
	Message() string
	matchEvent()
}

type GoalEvent struct {
	ScoringTeamID string `json:"scoring_team_id"`
	Score         Score  `json:"score"`
	Text          string `json:"text"`
}

func (GoalEvent) Kind() EventKind   { return EventGoal }
func (e GoalEvent) Message() string { return e.Text }
func (GoalEvent) matchEvent()       {}

type FullTimeEvent struct {
	Score Score  `json:"score"`
	Text  string `json:"text"`
}

func (FullTimeEvent) Kind() EventKind   { return EventFullTime }
func (e FullTimeEvent) Message() string { return e.Text }
func (FullTimeEvent) matchEvent()       {}

func goalText(scorer *Team, m *MatchState) string {
	return fmt.Sprintf("GOAL! %s scores. %s", scorer.Identity.Name, scoreLine(m))
}

func fullTimeText(m *MatchState) string {
	return "FULL TIME. " + scoreLine(m)
}

func scoreLine(m *MatchState) string {
	return fmt.Sprintf("%s %d - %d %s", m.Home.Identity.Name, m.Score.Home, m.Score.Away, m.Away.Identity.Name)
}
