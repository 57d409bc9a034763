package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mkarras/robochess/internal/archive"
	"github.com/mkarras/robochess/internal/config"
	"github.com/mkarras/robochess/internal/match"
	"github.com/mkarras/robochess/internal/obslog"
	"github.com/mkarras/robochess/internal/recovery"
	"github.com/mkarras/robochess/internal/session"
	"github.com/mkarras/robochess/internal/uci"
	"github.com/mkarras/robochess/internal/watchdog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	opts := match.Options{}

	if cfg.RedisURL != "" {
		store, err := archive.NewStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal("archive store init failed", zap.Error(err))
		}
		defer store.Close()
		opts.Archive = store
	}
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("result repository init failed", zap.Error(err))
		}
		defer repo.Close()
		opts.Repository = repo
	}
	if cfg.EnginePath != "" {
		bridge, err := uci.NewBridge(cfg.EnginePath, cfg.EngineDepth, cfg.EngineTimeout)
		if err != nil {
			logger.Fatal("engine bridge init failed", zap.Error(err))
		}
		opts.Bridge = bridge
	}

	sess := session.New()
	sess.Subscribe(func(f session.Field) {
		logger.Debug("session_change", zap.String("field", string(f)))
	})

	store := recovery.NewStore(cfg.RecoveryFile)
	coord := match.NewCoordinator(sess, store, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if coord.Restore() {
		logger.Warn("interrupted match detected, physical reconciliation required before play resumes")
	} else if err := coord.StartMatch(ctx); err != nil {
		logger.Fatal("match start failed", zap.Error(err))
	}

	if len(cfg.Endpoints) > 0 {
		endpoints := make([]watchdog.Endpoint, 0, len(cfg.Endpoints))
		for _, ep := range cfg.Endpoints {
			endpoints = append(endpoints, watchdog.NewHTTPEndpoint(ep.Name, ep.BaseURL))
		}
		wd := watchdog.New(endpoints, cfg.WatchdogInterval, coord.SetConnectivity)
		go wd.Run(ctx)
	}

	logger.Info("robochess coordinator running",
		zap.String("recovery_file", cfg.RecoveryFile),
		zap.Int("endpoints", len(cfg.Endpoints)),
		zap.Bool("engine", opts.Bridge != nil),
	)

	<-ctx.Done()
	logger.Info("shutting down")
	_ = os.Stdout.Sync()
}
