package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"character-chat/internal/domain"
)

const defaultMaxTokens = 1000

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// messagesAPI is the part of the SDK used here; *sdk.MessageService satisfies it.
type messagesAPI interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// StatusError carries the HTTP status of a failed Messages API call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anthropic: unexpected status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

// Client adapts the Anthropic Messages API to the ordered chat message list.
type Client struct {
	api    messagesAPI
	tokens TokenSource
}

type Option func(*settings)

type settings struct {
	baseURL    string
	httpClient *http.Client
}

func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

// NewClient builds a client with SDK retries disabled; each completion is a
// single round trip.
func NewClient(tokens TokenSource, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("anthropic: token source must not be nil")
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.httpClient))
	}
	sdkClient := sdk.NewClient(reqOpts...)
	return &Client{api: &sdkClient.Messages, tokens: tokens}, nil
}

func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, cfg domain.CompletionConfig) (string, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return "", errors.New("anthropic: model must not be empty")
	}
	apiKey, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("anthropic: resolve api key: %w", err)
	}

	msg, err := c.api.New(ctx, buildParams(messages, cfg), option.WithAPIKey(apiKey))
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	return firstText(msg), nil
}

// buildParams folds system entries into the system field, drops assistant
// entries without content, and skips assistant turns that precede the first
// user turn.
func buildParams(messages []domain.ChatMessage, cfg domain.CompletionConfig) sdk.MessageNewParams {
	var (
		system   []sdk.TextBlockParam
		turns    []sdk.MessageParam
		seenUser bool
	)
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			if strings.TrimSpace(m.Content) != "" {
				system = append(system, sdk.TextBlockParam{Text: m.Content})
			}
		case domain.RoleAssistant:
			if !seenUser || strings.TrimSpace(m.Content) == "" {
				continue
			}
			turns = append(turns, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			seenUser = true
			turns = append(turns, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return sdk.MessageNewParams{
		Model:       sdk.Model(cfg.Model),
		MaxTokens:   int64(maxTokens),
		System:      system,
		Messages:    turns,
		Temperature: sdk.Float(cfg.Temperature),
	}
}

func firstText(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
