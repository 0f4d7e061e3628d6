package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"warden/internal/app/bootstrap"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker()
	if err != nil {
		slog.Error("build worker failed", "event", "worker_build_failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	if err := app.Run(ctx); err != nil {
		slog.Error("worker stopped", "event", "worker_stopped", "error", err.Error())
		os.Exit(1)
	}
}
