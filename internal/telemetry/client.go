package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/shared/types"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

// Client relays match events to the telemetry service from a bounded queue.
// Sending never blocks the caller; events are dropped when the queue is full.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
	queue    chan types.TelemetryEvent

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
	dropped   int64
}

// NewClient posts to baseURL + "/v1/events". It starts one sender goroutine;
// call Close to drain it.
func NewClient(baseURL string, queueSize int, timeout time.Duration, log *zap.Logger) *Client {
	if queueSize <= 0 {
		queueSize = 256
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/v1/events",
		http:     &http.Client{Timeout: timeout},
		log:      log,
		queue:    make(chan types.TelemetryEvent, queueSize),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Relay converts and enqueues every event of one frame.
func (c *Client) Relay(matchID string, events []simulation.Event) {
	now := time.Now()
	for _, ev := range events {
		c.Send(FromMatchEvent(matchID, ev, now))
	}
}

// Send enqueues ev and reports whether it was accepted.
func (c *Client) Send(ev types.TelemetryEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.queue <- ev:
		return true
	default:
		c.dropped++
		c.log.Warn("telemetry queue full, dropping event",
			zap.String("event_type", ev.EventType),
			zap.String("match_id", ev.MatchID),
		)
		return false
	}
}

func (c *Client) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close stops accepting events and waits for the queue to drain.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.queue)
		c.mu.Unlock()
		c.wg.Wait()
	})
}

func (c *Client) run() {
	defer c.wg.Done()
	for ev := range c.queue {
		if err := c.post(context.Background(), ev); err != nil {
			c.log.Warn("telemetry post failed", zap.String("event_id", ev.EventID), zap.Error(err))
		}
	}
}

func (c *Client) post(ctx context.Context, ev types.TelemetryEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post event: unexpected status %d", resp.StatusCode)
	}
	return nil
}
