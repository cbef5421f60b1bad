package gameserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/config"
	"github.com/bturcotte520/kilocup/internal/shared/logger"
	"github.com/bturcotte520/kilocup/internal/simulation"
)

// Relay receives the events of every match. telemetry.Client satisfies it.
type Relay interface {
	Relay(matchID string, events []simulation.Event)
}

// Server hosts one single-player match per websocket connection.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	relay    Relay
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

func New(cfg *config.Config, log *zap.Logger, relay Relay) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:   cfg,
		log:   log,
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessions: make(map[string]*session),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(s.log))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/v1/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": s.SessionCount(), "matches": s.matchIDs()})
	})
	r.GET("/ws", s.handleWS)
	return r
}

func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) matchIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	return out
}

// Wait blocks until every session has finished its teardown.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleWS(c *gin.Context) {
	opponent := s.cfg.Opponent()
	if name := c.Query("opponent_name"); name != "" {
		opponent = simulation.NewOpponent(name, c.Query("opponent_code"))
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	simCfg := s.cfg.SimulationConfig()
	if simCfg.Seed == 0 {
		simCfg.Seed = time.Now().UnixNano()
	}
	matchID := uuid.NewString()
	sess := newSession(s, conn, matchID, simCfg, opponent)
	s.register(sess)
	s.wg.Add(1)

	s.log.Info("session started",
		zap.String("match_id", matchID),
		zap.String("opponent", opponent.Name),
		zap.Int64("seed", simCfg.Seed),
		zap.String("remote", c.Request.RemoteAddr),
	)

	defer s.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess.serve(ctx, cancel)
	s.unregister(matchID)
}

// Close drops every live connection; sessions tear down on their own. Use
// Wait to block until they have.
func (s *Server) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		_ = sess.conn.Close()
	}
}

func (s *Server) register(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.matchID] = sess
}

func (s *Server) unregister(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, matchID)
}
