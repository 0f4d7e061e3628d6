package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"warden/internal/app/bootstrap"
)

// @title Warden API
// @version 1.0
// @description Upload moderation, strike ledger and audit trail for a creator marketplace.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI()
	if err != nil {
		slog.Error("build api failed", "event", "api_build_failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	if err := app.Run(ctx); err != nil {
		slog.Error("api stopped", "event", "api_stopped", "error", err.Error())
		os.Exit(1)
	}
}
