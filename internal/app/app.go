// Package app wires configuration into the services shared by the Lambda and
// CLI entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"

	"character-chat/handler"
	"character-chat/internal/catalog"
	"character-chat/internal/config"
	"character-chat/internal/domain"
	"character-chat/internal/integrations/anthropic"
	"character-chat/internal/integrations/gemini"
	"character-chat/internal/integrations/openai"
	"character-chat/internal/integrations/paramstore"
	"character-chat/internal/metrics"
	"character-chat/internal/repository"
	"character-chat/internal/usecase"
)

// Token parameter names under PARAM_PREFIX.
const (
	paramOpenAIToken    = "open-ai-token"
	paramAnthropicToken = "anthropic-token"
	paramGeminiToken    = "gemini-token"
)

type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// App holds the assembled services. Close releases stores and provider clients.
type App struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Chat    *usecase.ChatService
	Collect *usecase.CollectService
	Handler *handler.Handler
	Metrics *metrics.Metrics

	closers []io.Closer
}

// Build assembles the App from cfg. AWS configuration is only loaded when a
// parameter prefix or the DynamoDB backend requires it.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg, Catalog: catalog.Default()}
	loader := &awsLoader{}

	providers, err := a.buildProviders(ctx, cfg, loader)
	if err != nil {
		a.Close()
		return nil, err
	}
	chat, err := usecase.NewChatService(a.Catalog, providers, cfg.DefaultProvider, usecase.WithMaxMessageLength(cfg.MaxMessageLength))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: chat service: %w", err)
	}
	a.Chat = chat

	repo, err := a.buildCollection(ctx, cfg, loader)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Collect = usecase.NewCollectService(repo, cfg.Environment)

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: metrics: %w", err)
	}
	a.Metrics = m

	h, err := handler.NewHandler(a.Chat, a.Collect, a.Catalog, handler.WithRecorder(m))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: handler: %w", err)
	}
	a.Handler = h
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildProviders(ctx context.Context, cfg config.Config, loader *awsLoader) (map[domain.ProviderMode]usecase.ProviderBinding, error) {
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	providers := make(map[domain.ProviderMode]usecase.ProviderBinding)

	tokens, err := resolveToken(ctx, cfg.OpenAIKey, cfg.ParamPrefix, paramOpenAIToken, loader)
	if err != nil {
		return nil, err
	}
	if tokens != nil {
		client, err := openai.NewClient(tokens, openai.WithBaseURL(cfg.OpenAIBaseURL), openai.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("app: openai: %w", err)
		}
		providers[domain.ProviderOpenAI] = usecase.ProviderBinding{Provider: client, Config: cfg.CompletionConfig(domain.ProviderOpenAI)}
	}

	tokens, err = resolveToken(ctx, cfg.AnthropicKey, cfg.ParamPrefix, paramAnthropicToken, loader)
	if err != nil {
		return nil, err
	}
	if tokens != nil {
		client, err := anthropic.NewClient(tokens, anthropic.WithBaseURL(cfg.AnthropicBaseURL), anthropic.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("app: anthropic: %w", err)
		}
		providers[domain.ProviderAnthropic] = usecase.ProviderBinding{Provider: client, Config: cfg.CompletionConfig(domain.ProviderAnthropic)}
	}

	tokens, err = resolveToken(ctx, cfg.GeminiKey, cfg.ParamPrefix, paramGeminiToken, loader)
	if err != nil {
		return nil, err
	}
	if tokens != nil {
		client, err := gemini.NewClient(tokens)
		if err != nil {
			return nil, fmt.Errorf("app: gemini: %w", err)
		}
		a.closers = append(a.closers, client)
		providers[domain.ProviderGemini] = usecase.ProviderBinding{
			Provider: withTimeout(client, cfg.ProviderTimeout),
			Config:   cfg.CompletionConfig(domain.ProviderGemini),
		}
	}

	if len(providers) == 0 {
		return nil, errors.New("app: no completion provider configured; set an API key or PARAM_PREFIX")
	}
	modes := make([]domain.ProviderMode, 0, len(providers))
	for mode := range providers {
		modes = append(modes, mode)
	}
	slog.Info("completion providers registered", "providers", modes, "default", cfg.DefaultProvider)
	return providers, nil
}

// resolveToken prefers a key from the environment, then an SSM parameter.
// It returns nil when neither is configured.
func resolveToken(ctx context.Context, key, prefix, param string, loader *awsLoader) (tokenSource, error) {
	if key != "" {
		return paramstore.StaticToken(key), nil
	}
	if prefix == "" {
		return nil, nil
	}
	getter, err := loader.paramClient(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := paramstore.NewParamToken(getter, paramstore.TokenName(prefix, param))
	if err != nil {
		return nil, fmt.Errorf("app: %s: %w", param, err)
	}
	return tok, nil
}

func (a *App) buildCollection(ctx context.Context, cfg config.Config, loader *awsLoader) (usecase.CollectionRepository, error) {
	switch cfg.CollectionBackend {
	case config.BackendNone:
		slog.Warn("collection store not configured; submissions will be rejected")
		return nil, nil
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil
	case config.BackendSQLite:
		s, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("app: collection store: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.BackendPostgres:
		s, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: collection store: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.BackendDynamoDB:
		awsCfg, err := loader.config(ctx)
		if err != nil {
			return nil, err
		}
		c, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.CollectionTable)
		if err != nil {
			return nil, fmt.Errorf("app: collection store: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("app: unknown collection backend %q", cfg.CollectionBackend)
}

// awsLoader loads the default AWS configuration at most once.
type awsLoader struct {
	once   sync.Once
	cfg    aws.Config
	err    error
	params *paramstore.Client
}

func (l *awsLoader) config(ctx context.Context) (aws.Config, error) {
	l.once.Do(func() {
		l.cfg, l.err = awsconfig.LoadDefaultConfig(ctx)
		if l.err != nil {
			l.err = fmt.Errorf("app: load AWS config: %w", l.err)
		}
	})
	return l.cfg, l.err
}

func (l *awsLoader) paramClient(ctx context.Context) (*paramstore.Client, error) {
	if l.params != nil {
		return l.params, nil
	}
	cfg, err := l.config(ctx)
	if err != nil {
		return nil, err
	}
	c, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("app: ssm client: %w", err)
	}
	l.params = c
	return c, nil
}
