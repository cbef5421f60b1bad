package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/shared/types"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

func newTestRouter(t *testing.T) (*Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewStore()
	return store, NewRouter(store, zap.NewNop())
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestPostEventValidation(t *testing.T) {
	store, r := newTestRouter(t)

	if rec := do(r, http.MethodPost, "/v1/events", "{"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got=%d", rec.Code)
	}
	if rec := do(r, http.MethodPost, "/v1/events", `{"match_id":"m"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without type, got=%d", rec.Code)
	}

	rec := do(r, http.MethodPost, "/v1/events", `{"event_type":"goal","match_id":"m","payload":{"scoring_team_id":"kilo"}}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got=%d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["event_id"] == "" {
		t.Fatal("expected generated event id")
	}
	ev := store.Recent(1)[0]
	if ev.Timestamp == 0 {
		t.Fatal("expected server timestamp")
	}
	if m, _ := store.Match("m"); m.Goals["kilo"] != 1 {
		t.Fatalf("expected goal counted, got=%+v", m)
	}
}

func TestListAndMatchEndpoints(t *testing.T) {
	store, r := newTestRouter(t)
	now := time.Now()
	store.Ingest(FromMatchEvent("m1", simulation.GoalEvent{ScoringTeamID: "kilo", Score: simulation.Score{Home: 1}}, now))
	store.Ingest(FromMatchEvent("m1", simulation.FullTimeEvent{Score: simulation.Score{Home: 1}}, now))

	rec := do(r, http.MethodGet, "/v1/events?limit=1", "")
	var list struct {
		Count  int                    `json:"count"`
		Events []types.TelemetryEvent `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Events[0].EventType != EventFullTime {
		t.Fatalf("unexpected list %+v", list)
	}
	if rec := do(r, http.MethodGet, "/v1/events?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got=%d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/v1/matches/m1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d", rec.Code)
	}
	var m types.MatchSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Final == nil || m.Final.Home != 1 || m.Events != 2 {
		t.Fatalf("unexpected summary %+v", m)
	}
	if rec := do(r, http.MethodGet, "/v1/matches/unknown", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got=%d", rec.Code)
	}
}

func TestMetricsAndCORS(t *testing.T) {
	store, r := newTestRouter(t)
	store.Ingest(types.TelemetryEvent{EventType: EventGoal, MatchID: "m"})

	rec := do(r, http.MethodGet, "/metrics", "")
	body := rec.Body.String()
	if !strings.Contains(body, "kilocup_telemetry_events_total 1") ||
		!strings.Contains(body, `kilocup_telemetry_events_by_type{event_type="goal"} 1`) {
		t.Fatalf("unexpected metrics:\n%s", body)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got=%q", got)
	}
	if rec := do(r, http.MethodOptions, "/v1/events", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got=%d", rec.Code)
	}
}
