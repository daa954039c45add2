package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"character-chat/internal/domain"
)

const roleModel = "model"

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StatusError carries the HTTP status of a failed Gemini call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

// Client adapts Gemini chat sessions to the ordered chat message list. The
// underlying genai client is created on first use, once the key is known.
type Client struct {
	tokens TokenSource
	opts   []option.ClientOption

	mu     sync.Mutex
	client *genai.Client
}

func NewClient(tokens TokenSource, opts ...option.ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("gemini: token source must not be nil")
	}
	return &Client{tokens: tokens, opts: opts}, nil
}

func (c *Client) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	key, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini: resolve api key: %w", err)
	}
	opts := append([]option.ClientOption{option.WithAPIKey(key)}, c.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.client = client
	return client, nil
}

func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, cfg domain.CompletionConfig) (string, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return "", errors.New("gemini: model must not be empty")
	}
	system, history, last, err := toContents(messages)
	if err != nil {
		return "", err
	}
	client, err := c.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(cfg.Model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	model.SetTemperature(float32(cfg.Temperature))

	session := model.StartChat()
	session.History = history
	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.Code, Err: err}
		}
		return "", fmt.Errorf("gemini: send message: %w", err)
	}
	return responseText(resp), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// toContents splits the ordered list into a system instruction, prior turns and
// the final user turn. Model turns before the first user turn are dropped.
func toContents(messages []domain.ChatMessage) (string, []*genai.Content, *genai.Content, error) {
	var (
		system   []string
		turns    []*genai.Content
		seenUser bool
	)
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			if s := strings.TrimSpace(m.Content); s != "" {
				system = append(system, s)
			}
		case domain.RoleAssistant:
			if !seenUser || strings.TrimSpace(m.Content) == "" {
				continue
			}
			turns = append(turns, &genai.Content{Role: roleModel, Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			seenUser = true
			turns = append(turns, &genai.Content{Role: domain.RoleUser, Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != domain.RoleUser {
		return "", nil, nil, errors.New("gemini: last message must be from the user")
	}
	return strings.Join(system, "\n\n"), turns[:len(turns)-1], turns[len(turns)-1], nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
