package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relaybot/internal/app"
	"relaybot/internal/buildinfo"
	"relaybot/internal/config"
	"relaybot/internal/logger"
	"log/slog"
)

const defaultConfigPath = "config.yaml"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Init(cfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	startedAt := time.Now()
	application, err := app.New(cfg)
	if err != nil {
		logger.Error(context.Background(), "app", "app.bootstrap",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		_ = logger.Shutdown()
		os.Exit(1)
	}
	defer application.Close()

	logger.Info(context.Background(), "app", "app.ready",
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.Duration("duration", logger.Took(startedAt)),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		logger.Error(context.Background(), "app", "app.run",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		_ = logger.Shutdown()
		os.Exit(1)
	}

	logger.Info(context.Background(), "app", "app.shutdown",
		slog.String("status", "ok"),
	)
}
