// Command charchat serves the character chat API locally and offers a
// terminal chat client.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"character-chat/internal/config"
)

var (
	logLevel string
	version  = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "charchat",
	Short: "Character chat server and terminal client",
	Long: `charchat chats with preset AI characters.

Configuration is read from the environment and an optional .env file in the
working directory.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(charactersCmd)
}

// loadConfig reads configuration and installs the CLI logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	return cfg, nil
}
