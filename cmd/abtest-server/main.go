package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emiliopalmerini/abtest/internal/cli"
	"github.com/emiliopalmerini/abtest/internal/config"
	"github.com/emiliopalmerini/abtest/internal/logging"
	"github.com/emiliopalmerini/abtest/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := logging.Setup(os.Stderr, logging.Options{
		Verbose: os.Getenv("ABTEST_VERBOSE") != "",
		NoColor: os.Getenv("NO_COLOR") != "",
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	server := web.NewServer(app.Service, web.Options{
		Addr:            cfg.Addr,
		Alpha:           cfg.Alpha,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	})
	return server.Start(ctx)
}
