package main

import (
	"github.com/spf13/cobra"

	"character-chat/internal/app"
	"character-chat/internal/catalog"
	"character-chat/internal/client"
	"character-chat/internal/domain"
	"character-chat/internal/session"
)

var (
	chatPersona  string
	chatProvider string
	chatAPI      string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a character in the terminal",
	Long: `Start an interactive chat. Messages go to a running API when --api or
API_BASE_URL is set, otherwise the providers are called in-process.

Commands inside the chat:
  /persona <id>     switch character (the conversation restarts)
  /provider <name>  switch provider (openai, anthropic, gemini)
  /characters       list characters
  /quit             leave

Examples:
  charchat chat --persona pet-dog
  charchat chat --api http://localhost:8080 --provider anthropic`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatPersona, "persona", "", "starting character id (default "+session.DefaultPersonaID+")")
	chatCmd.Flags().StringVar(&chatProvider, "provider", "", "completion provider; empty uses the server default")
	chatCmd.Flags().StringVar(&chatAPI, "api", "", "base URL of a running API; overrides API_BASE_URL")
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	gate, closer, err := app.OpenGate(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var (
		completer session.Completer
		collector session.Collector
	)
	api := chatAPI
	if api == "" {
		api = cfg.APIBaseURL
	}
	if api != "" {
		c, err := client.New(api)
		if err != nil {
			return err
		}
		completer, collector = c, c
	} else {
		a, err := app.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		completer, collector = a.Chat, a.Collect
	}

	opts := []session.Option{session.WithSurveyDelay(cfg.SurveyDelay)}
	if chatPersona != "" {
		opts = append(opts, session.WithPersona(chatPersona))
	}
	if chatProvider != "" {
		opts = append(opts, session.WithProvider(domain.ProviderMode(chatProvider)))
	}
	cat := catalog.Default()
	s, err := session.New(cat, completer, collector, gate, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	return newTerminal(cmd.InOrStdin(), cmd.OutOrStdout(), s, cat).run(ctx)
}
