package app

import (
	"context"
	"time"

	"character-chat/internal/domain"
	"character-chat/internal/usecase"
)

// timeoutProvider bounds providers whose SDK offers no per-client HTTP timeout.
type timeoutProvider struct {
	next    usecase.Provider
	timeout time.Duration
}

func withTimeout(p usecase.Provider, d time.Duration) usecase.Provider {
	if d <= 0 {
		return p
	}
	return timeoutProvider{next: p, timeout: d}
}

func (t timeoutProvider) Complete(ctx context.Context, messages []domain.ChatMessage, cfg domain.CompletionConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, messages, cfg)
}
