package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/wardwatch/internal/config"
	"github.com/agenthands/wardwatch/internal/driver"
	"github.com/agenthands/wardwatch/internal/logger"
	"github.com/agenthands/wardwatch/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "wardwatch-server")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("no .env file found, using environment and config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var d driver.GraphDriver
	if cfg.Memgraph.Enabled {
		mg, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, log)
		if err != nil {
			return err
		}
		defer mg.Close(context.Background())
		if err := mg.BuildIndices(ctx); err != nil {
			return err
		}
		d = mg
	}

	srv := server.NewServer(cfg, d, log)
	log.Info("risk window configured",
		zap.Int("window_days", cfg.Risk.WindowDays),
		zap.String("positive_marker", cfg.Risk.PositiveMarker),
	)
	return srv.Run(ctx)
}
