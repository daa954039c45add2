package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// tokenPayload is the expected JSON shape stored in SSM for API tokens.
type tokenPayload struct {
	Token string `json:"token"`
}

// StaticToken is an API key supplied directly, e.g. from the environment.
type StaticToken string

func (s StaticToken) Token(_ context.Context) (string, error) {
	t := strings.TrimSpace(string(s))
	if t == "" {
		return "", errors.New("paramstore: static token is empty")
	}
	return t, nil
}

// ParamToken resolves an API token stored as {"token":"..."} in a parameter.
// The first successful lookup is cached for the life of the process; failures
// are retried on the next call.
type ParamToken struct {
	getter Getter
	name   string

	mu    sync.Mutex
	token string
}

func NewParamToken(getter Getter, name string) (*ParamToken, error) {
	if getter == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: token parameter name must not be empty")
	}
	return &ParamToken{getter: getter, name: name}, nil
}

// TokenName joins a parameter prefix and a token parameter suffix.
func TokenName(prefix, suffix string) string {
	return strings.TrimRight(strings.TrimSpace(prefix), "/") + "/" + strings.TrimLeft(suffix, "/")
}

func (p *ParamToken) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" {
		return p.token, nil
	}
	raw, err := p.getter.GetParameter(ctx, p.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch token: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("paramstore: API token is empty")
	}
	p.token = strings.TrimSpace(tp.Token)
	return p.token, nil
}
