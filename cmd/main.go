package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/angeloszaimis/keepalive/config"
	"github.com/angeloszaimis/keepalive/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded, using process environment", slog.Any("err", err))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	debug := cfg.Logging.Level == config.LogLevelDebug
	log := logger.New(cfg.Logging.Level, debug, cfg.Server.Environment)

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("Failed to initialize", slog.Any("err", err))
		os.Exit(1)
	}

	if err := a.run(ctx); err != nil {
		log.Error("Server stopped with error", slog.Any("err", err))
		cancel()
		os.Exit(1)
	}
}
