package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"character-chat/internal/app"
	"character-chat/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// ---- Services ----
	a, err := app.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build application", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	slog.Info("lambda starting",
		"environment", cfg.Environment,
		"collection_backend", cfg.CollectionBackend,
		"default_provider", cfg.DefaultProvider,
	)
	lambda.Start(a.Handler.Handle)
}
