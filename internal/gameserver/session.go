package gameserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/host"
	"github.com/bturcotte520/kilocup/internal/input"
	"github.com/bturcotte520/kilocup/internal/replay"
	"github.com/bturcotte520/kilocup/internal/shared/types"
	"github.com/bturcotte520/kilocup/internal/simulation"
	"github.com/bturcotte520/kilocup/internal/vec"
)

const (
	sendBuffer   = 64
	readTimeout  = 90 * time.Second
	writeTimeout = 10 * time.Second
	pingEvery    = 20 * time.Second
)

type session struct {
	srv     *Server
	matchID string
	conn    *websocket.Conn
	send    chan []byte
	log     *zap.Logger

	engine   *simulation.Engine
	sources  map[input.Device]*input.RemoteSource
	loop     *host.Loop
	recorder *replay.Recorder

	frameEvery time.Duration
	viewEvery  time.Duration
	lastFrame  time.Time
	lastView   time.Time
	ackSeq     atomic.Uint64

	sendMu     sync.Mutex
	sendClosed bool
}

func newSession(srv *Server, conn *websocket.Conn, matchID string, cfg simulation.Config, opponent simulation.TeamIdentity) *session {
	log := srv.log.With(zap.String("match_id", matchID))
	sess := &session{
		srv:        srv,
		matchID:    matchID,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		log:        log,
		engine:     simulation.NewEngine(cfg, opponent, simulation.WithMatchID(matchID), simulation.WithLogger(log)),
		sources:    make(map[input.Device]*input.RemoteSource, len(input.Devices)),
		recorder:   replay.NewRecorder(matchID, cfg, opponent),
		frameEvery: time.Second / time.Duration(srv.cfg.Server.FrameHz),
		viewEvery:  time.Second / time.Duration(srv.cfg.Server.ViewHz),
	}

	ordered := make([]input.Source, 0, len(input.Devices))
	for _, d := range input.Devices {
		src := input.NewRemoteSource(d)
		sess.sources[d] = src
		ordered = append(ordered, src)
	}
	sess.loop = host.New(sess.engine, ordered,
		host.WithLogger(log),
		host.WithStepHook(sess.recorder.Record),
		host.WithEvents(sess.onEvents),
		host.WithFrameHook(sess.onFrame),
	)
	return sess
}

// serve runs the match until the client leaves. The match goroutine is the
// only one touching the engine.
func (s *session) serve(ctx context.Context, cancel context.CancelFunc) {
	s.sendEnvelope(types.ServerEnvelope{
		Type:     "welcome",
		Match:    s.matchInfo(),
		ServerMS: nowMS(),
		Message:  "connected",
	})

	matchDone := make(chan struct{})
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		s.writePump()
	}()
	go func() {
		defer close(matchDone)
		s.runMatch(ctx)
	}()

	s.readPump()
	cancel()
	<-matchDone
	s.closeSend()
	<-writeDone
	s.loop.Close()
	s.log.Info("session closed", zap.Uint64("tick", s.engine.Tick()))
}

func (s *session) runMatch(ctx context.Context) {
	loopEvery := time.Second / time.Duration(s.srv.cfg.Server.LoopHz)
	err := s.loop.Run(ctx, loopEvery)
	if err != nil {
		return
	}
	// Full time: push the final state right away.
	s.broadcastFrame()
	s.broadcastView()
	if err := s.saveReplay(); err != nil {
		s.log.Warn("save replay failed", zap.Error(err))
	}
}

func (s *session) onEvents(events []simulation.Event) {
	for _, ev := range events {
		me := types.NewMatchEvent(ev)
		s.sendEnvelope(types.ServerEnvelope{
			Type:     "event",
			Tick:     s.engine.Tick(),
			Event:    &me,
			ServerMS: nowMS(),
		})
	}
	if s.srv.relay != nil {
		s.srv.relay.Relay(s.matchID, events)
	}
	// The scoreboard changes with every event; do not wait for the timer.
	s.broadcastView()
}

func (s *session) onFrame(int) {
	now := time.Now()
	if now.Sub(s.lastFrame) >= s.frameEvery {
		s.broadcastFrame()
	}
	if now.Sub(s.lastView) >= s.viewEvery {
		s.broadcastView()
	}
}

func (s *session) broadcastFrame() {
	s.lastFrame = time.Now()
	frame := s.engine.Frame()
	s.sendEnvelope(types.ServerEnvelope{
		Type:     "frame",
		Tick:     frame.Tick,
		Frame:    &frame,
		ServerMS: nowMS(),
		AckSeq:   s.ackSeq.Load(),
	})
}

func (s *session) broadcastView() {
	s.lastView = time.Now()
	view := s.engine.View()
	s.sendEnvelope(types.ServerEnvelope{
		Type:     "view",
		Tick:     s.engine.Tick(),
		View:     &view,
		ServerMS: nowMS(),
	})
}

func (s *session) matchInfo() *types.MatchInfo {
	v := s.engine.View()
	return &types.MatchInfo{
		MatchID: s.matchID,
		Home:    v.Home,
		Away:    v.Away,
		Config:  s.engine.Config(),
	}
}

func (s *session) saveReplay() error {
	dir := s.srv.cfg.Server.ReplayDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	path := filepath.Join(dir, s.matchID+ReplayExt)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay: %w", err)
	}
	defer f.Close()
	if err := replay.Encode(f, s.recorder.Recording()); err != nil {
		return err
	}
	s.log.Info("replay saved", zap.String("path", path), zap.Int("steps", s.recorder.Len()))
	return nil
}

// ReplayExt is the file extension of saved replays.
const ReplayExt = ".kcr"

func (s *session) readPump() {
	_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Info("client disconnected")
				return
			}
			s.log.Debug("read error", zap.Error(err))
			return
		}

		var in types.ClientEnvelope
		if err := json.Unmarshal(msg, &in); err != nil {
			s.sendError("bad_payload")
			continue
		}

		switch in.Type {
		case "input":
			if in.Input == nil {
				s.sendError("missing_input")
				continue
			}
			d, err := input.ParseDevice(in.Device)
			if err != nil {
				s.sendError("unknown_device")
				continue
			}
			s.sources[d].Apply(input.Held{
				Move:   vec.New(in.Input.MoveX, in.Input.MoveY),
				Sprint: in.Input.Sprint,
				Action: in.Input.Action,
				Shoot:  in.Input.Shoot,
				Pause:  in.Input.Pause,
			})
			s.ackSeq.Store(in.Input.Sequence)
		case "ping":
			s.sendEnvelope(types.ServerEnvelope{Type: "pong", ServerMS: nowMS()})
		default:
			s.sendError("unsupported_message_type")
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (s *session) sendError(message string) {
	s.sendEnvelope(types.ServerEnvelope{Type: "error", Message: message})
}

// sendEnvelope queues a message without blocking. A slow client loses
// messages rather than stalling the match.
func (s *session) sendEnvelope(env types.ServerEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		s.log.Warn("marshal envelope failed", zap.String("type", env.Type), zap.Error(err))
		return
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.sendClosed {
		return
	}
	select {
	case s.send <- payload:
	default:
	}
}

func (s *session) closeSend() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.sendClosed {
		s.sendClosed = true
		close(s.send)
	}
}

func nowMS() int64 {
	return time.Now().UTC().UnixMilli()
}
