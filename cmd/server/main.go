package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/server"
	"github.com/juicebar/pos-backend/config"
	"github.com/juicebar/pos-backend/database"
)

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred cleanup, including the
// logger flush, runs before main exits.
func start() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()
	logger.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if err := server.Bootstrap(ctx, cfg, db, logger); err != nil {
		return err
	}

	return server.New(cfg, db, logger, server.Options{}).Run(ctx)
}
