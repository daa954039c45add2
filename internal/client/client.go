// Package client talks to a running character-chat API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"character-chat/internal/domain"
	"character-chat/internal/usecase"
)

type chatRequest struct {
	Message     string               `json:"message"`
	Messages    []domain.ChatMessage `json:"messages"`
	CharacterID string               `json:"characterId"`
	Provider    string               `json:"provider,omitempty"`
}

type chatResponse struct {
	Message string `json:"message"`
}

type submitResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type charactersResponse struct {
	Characters []domain.Persona `json:"characters"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusError is a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client implements the session's completer and collector against the HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base url must not be empty")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Complete(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	history := in.History
	if history == nil {
		history = []domain.ChatMessage{}
	}
	var out chatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat", chatRequest{
		Message:     in.Message,
		Messages:    history,
		CharacterID: in.PersonaID,
		Provider:    string(in.Provider),
	}, &out)
	if err != nil {
		return usecase.ChatOutput{}, err
	}
	return usecase.ChatOutput{Message: out.Message, Provider: in.Provider}, nil
}

func (c *Client) SubmitEmail(ctx context.Context, in usecase.EmailInput) (domain.EmailRecord, error) {
	var out submitResponse[domain.EmailRecord]
	if err := c.do(ctx, http.MethodPost, "/api/email-collection", map[string]string{"email": in.Email}, &out); err != nil {
		return domain.EmailRecord{}, err
	}
	return out.Data, nil
}

func (c *Client) SubmitSurvey(ctx context.Context, in usecase.SurveyInput) (domain.SurveyResponse, error) {
	features := in.SelectedFeatures
	if features == nil {
		features = []string{}
	}
	body := struct {
		SelectedFeatures []string `json:"selectedFeatures"`
		CustomInput      string   `json:"customInput"`
	}{features, in.CustomInput}
	var out submitResponse[domain.SurveyResponse]
	if err := c.do(ctx, http.MethodPost, "/api/survey", body, &out); err != nil {
		return domain.SurveyResponse{}, err
	}
	return out.Data, nil
}

func (c *Client) Characters(ctx context.Context) ([]domain.Persona, error) {
	var out charactersResponse
	if err := c.do(ctx, http.MethodGet, "/api/characters", nil, &out); err != nil {
		return nil, err
	}
	return out.Characters, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	url := c.baseURL + path
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return usecase.NewError(usecase.ErrorBackendUnavailable, "api_unreachable", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("client: read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return apiError(&StatusError{StatusCode: res.StatusCode, URL: url, Body: string(raw)}, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// apiError rebuilds the server's usecase error from its JSON body, falling
// back to a status-derived code.
func apiError(statusErr *StatusError, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return usecase.NewError(usecase.ErrorCode(body.Error), body.Message, statusErr)
	}
	return usecase.NewError(codeForStatus(statusErr.StatusCode), "http_"+fmt.Sprint(statusErr.StatusCode), statusErr)
}

func codeForStatus(status int) usecase.ErrorCode {
	switch {
	case status == http.StatusConflict:
		return usecase.ErrorConflict
	case status == http.StatusTooManyRequests:
		return usecase.ErrorRateLimited
	case status == http.StatusBadGateway:
		return usecase.ErrorUpstream
	case status >= 400 && status < 500:
		return usecase.ErrorInvalidInput
	default:
		return usecase.ErrorBackendUnavailable
	}
}
