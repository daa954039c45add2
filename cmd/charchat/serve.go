package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"character-chat/internal/app"
	"character-chat/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat and collection API over HTTP",
	Long: `Serve the same routes as the Lambda deployment on a local address.

Examples:
  # Serve on HTTP_ADDR (default :8080)
  charchat serve

  # Serve on another port with the in-memory collection store
  COLLECTION_BACKEND=memory charchat serve --addr :9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address; overrides HTTP_ADDR")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	router, err := httpapi.NewRouter(a.Handler, httpapi.WithMetricsHandler(a.Metrics.Handler()))
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	return httpapi.ListenAndServe(ctx, cfg.HTTPAddr, router)
}
