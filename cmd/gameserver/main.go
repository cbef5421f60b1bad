package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bturcotte520/kilocup/internal/config"
	"github.com/bturcotte520/kilocup/internal/gameserver"
	"github.com/bturcotte520/kilocup/internal/shared/logger"
	"github.com/bturcotte520/kilocup/internal/telemetry"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.New("gameserver", "info").Fatal("load env", zap.Error(err))
	}
	cfg, err := config.Load(os.Getenv("KILOCUP_CONFIG"))
	if err != nil {
		logger.New("gameserver", "info").Fatal("load config", zap.Error(err))
	}
	log := logger.New("gameserver", cfg.Log.Level)
	failed := false
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()
	defer func() { _ = log.Sync() }()

	var relay gameserver.Relay
	if cfg.Telemetry.URL != "" {
		client := telemetry.NewClient(cfg.Telemetry.URL, cfg.Telemetry.QueueSize,
			time.Duration(cfg.Telemetry.TimeoutMs)*time.Millisecond, log.Named("telemetry"))
		defer client.Close()
		relay = client
	}

	gin.SetMode(gin.ReleaseMode)
	srv := gameserver.New(cfg, log, relay)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		srv.Close()
	}()

	log.Info("game server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("telemetry", relay != nil),
		zap.String("replay_dir", cfg.Server.ReplayDir),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", zap.Error(err))
		failed = true
		srv.Close()
		return
	}
	srv.Wait()
}
