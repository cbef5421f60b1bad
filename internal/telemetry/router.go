package telemetry

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/shared/logger"
	"github.com/bturcotte520/kilocup/internal/shared/types"
)

const defaultListLimit = 100

// NewRouter exposes store over HTTP.
func NewRouter(store *Store, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(log), cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/v1/events", func(c *gin.Context) {
		var ev types.TelemetryEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		if ev.EventType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_type_required"})
			return
		}
		if ev.EventID == "" {
			ev.EventID = uuid.NewString()
		}
		if ev.Timestamp == 0 {
			ev.Timestamp = time.Now().UTC().UnixMilli()
		}
		store.Ingest(ev)
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "event_id": ev.EventID})
	})
	r.GET("/v1/events", func(c *gin.Context) {
		limit := defaultListLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
				return
			}
			limit = min(n, RecentCapacity)
		}
		recent := store.Recent(limit)
		c.JSON(http.StatusOK, gin.H{"count": len(recent), "events": recent})
	})
	r.GET("/v1/matches/:id", func(c *gin.Context) {
		m, ok := store.Match(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "match_not_found"})
			return
		}
		c.JSON(http.StatusOK, m)
	})
	r.GET("/metrics", func(c *gin.Context) {
		summary := store.Summary()
		c.Header("Content-Type", "text/plain; version=0.0.4")
		w := c.Writer
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, "# HELP kilocup_telemetry_events_total Total telemetry events ingested")
		_, _ = fmt.Fprintln(w, "# TYPE kilocup_telemetry_events_total counter")
		_, _ = fmt.Fprintf(w, "kilocup_telemetry_events_total %d\n", summary.Total)
		kinds := make([]string, 0, len(summary.ByType))
		for typ := range summary.ByType {
			kinds = append(kinds, typ)
		}
		sort.Strings(kinds)
		for _, typ := range kinds {
			_, _ = fmt.Fprintf(w, "kilocup_telemetry_events_by_type{event_type=%q} %d\n", typ, summary.ByType[typ])
		}
		_, _ = fmt.Fprintf(w, "kilocup_telemetry_matches %d\n", summary.Matches)
	})
	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
