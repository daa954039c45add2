package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"character-chat/internal/domain"
)

// Provider is one completion backend. Adapters translate the ordered message
// list into their own request shape and return a single reply.
type Provider interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, cfg domain.CompletionConfig) (string, error)
}

type PersonaFinder interface {
	GetByID(id string) (domain.Persona, bool)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ProviderBinding pairs a provider with the configuration sent on every call.
type ProviderBinding struct {
	Provider Provider
	Config   domain.CompletionConfig
}

type ChatInput struct {
	PersonaID string
	Message   string
	History   []domain.ChatMessage
	Provider  domain.ProviderMode
}

type ChatOutput struct {
	Message  string
	Provider domain.ProviderMode
}

// ChatService is the completion gateway: persona lookup, prompt assembly and a
// single provider round trip.
type ChatService struct {
	personas        PersonaFinder
	providers       map[domain.ProviderMode]ProviderBinding
	defaultProvider domain.ProviderMode
	maxMessageLen   int
}

type ChatOption func(*ChatService)

// WithMaxMessageLength rejects user messages longer than n runes. Zero disables
// the check.
func WithMaxMessageLength(n int) ChatOption {
	return func(s *ChatService) {
		s.maxMessageLen = n
	}
}

func NewChatService(personas PersonaFinder, providers map[domain.ProviderMode]ProviderBinding, defaultProvider domain.ProviderMode, opts ...ChatOption) (*ChatService, error) {
	if personas == nil {
		return nil, errors.New("usecase: persona finder must not be nil")
	}
	if len(providers) == 0 {
		return nil, errors.New("usecase: at least one provider is required")
	}
	for mode, b := range providers {
		if b.Provider == nil {
			return nil, errors.New("usecase: provider " + string(mode) + " must not be nil")
		}
	}
	if _, ok := providers[defaultProvider]; !ok {
		return nil, errors.New("usecase: default provider " + string(defaultProvider) + " is not registered")
	}
	s := &ChatService{
		personas:        personas,
		providers:       providers,
		defaultProvider: defaultProvider,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Providers lists the registered provider modes.
func (s *ChatService) Providers() []domain.ProviderMode {
	out := make([]domain.ProviderMode, 0, len(s.providers))
	for mode := range s.providers {
		out = append(out, mode)
	}
	return out
}

func (s *ChatService) Complete(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorMissingInput, "empty_message", nil)
	}
	if s.maxMessageLen > 0 && utf8.RuneCountInString(message) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	persona, ok := s.personas.GetByID(in.PersonaID)
	if !ok {
		return ChatOutput{}, newError(ErrorInvalidPersona, "unknown_persona", nil)
	}
	mode := in.Provider
	if mode == "" {
		mode = s.defaultProvider
	}
	binding, ok := s.providers[mode]
	if !ok {
		return ChatOutput{}, newError(ErrorInvalidInput, "unsupported_provider", nil)
	}

	start := time.Now()
	reply, err := binding.Provider.Complete(ctx, buildPromptMessages(persona, in.History, message), binding.Config)
	elapsed := time.Since(start)
	if err != nil {
		slog.Error("completion failed", "provider", mode, "persona", persona.ID, "elapsed_ms", elapsed.Milliseconds(), "err", err)
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return ChatOutput{}, newError(ErrorRateLimited, string(mode)+"_rate_limited", err)
		}
		return ChatOutput{}, newError(ErrorUpstream, string(mode)+"_error", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		slog.Error("completion returned no text", "provider", mode, "persona", persona.ID, "elapsed_ms", elapsed.Milliseconds())
		return ChatOutput{}, newError(ErrorUpstream, string(mode)+"_empty_reply", nil)
	}
	slog.Info("completion served", "provider", mode, "persona", persona.ID, "elapsed_ms", elapsed.Milliseconds())

	return ChatOutput{Message: reply, Provider: mode}, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
