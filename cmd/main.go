// cmd/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloudpico-dailyagg/internal/app"
	"cloudpico-dailyagg/internal/config"
	"cloudpico-dailyagg/internal/logging"
)

const appName = "dailyagg"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout may carry the aggregated records, so logs always go to stderr.
	logger := logging.New(cfg, version, appName, os.Stderr)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger, os.Stdin, os.Stdout); err != nil {
		slog.Error("run failed", "err", err)
		stop()
		os.Exit(1)
	}
}
