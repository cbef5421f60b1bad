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
	"github.com/bturcotte520/kilocup/internal/shared/logger"
	"github.com/bturcotte520/kilocup/internal/telemetry"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.New("telemetry", "info").Fatal("load env", zap.Error(err))
	}
	cfg, err := config.Load(os.Getenv("KILOCUP_CONFIG"))
	if err != nil {
		logger.New("telemetry", "info").Fatal("load config", zap.Error(err))
	}
	log := logger.New("telemetry", cfg.Log.Level)
	failed := false
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()
	defer func() { _ = log.Sync() }()

	gin.SetMode(gin.ReleaseMode)
	store := telemetry.NewStore()
	httpServer := &http.Server{
		Addr:              cfg.Telemetry.Addr,
		Handler:           telemetry.NewRouter(store, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("telemetry listening", zap.String("addr", cfg.Telemetry.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", zap.Error(err))
		failed = true
	}
}
