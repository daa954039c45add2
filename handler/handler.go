package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"character-chat/internal/domain"
	"character-chat/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// Route paths served by the handler.
const (
	PathChat            = "/api/chat"
	PathClaude          = "/api/claude"
	PathCharacters      = "/api/characters"
	PathEmailCollection = "/api/email-collection"
	PathSurvey          = "/api/survey"
)

type ChatUseCase interface {
	Complete(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type CollectUseCase interface {
	SubmitEmail(ctx context.Context, in usecase.EmailInput) (domain.EmailRecord, error)
	SubmitSurvey(ctx context.Context, in usecase.SurveyInput) (domain.SurveyResponse, error)
	Health(ctx context.Context) usecase.CollectionHealth
}

type PersonaLister interface {
	All() []domain.Persona
}

// Recorder observes every handled request. The metrics package implements it.
type Recorder interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

type Handler struct {
	chat     ChatUseCase
	collect  CollectUseCase
	personas PersonaLister
	recorder Recorder
}

type Option func(*Handler)

func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

type chatRequest struct {
	Message     string               `json:"message"`
	Messages    []domain.ChatMessage `json:"messages"`
	CharacterID string               `json:"characterId"`
	Provider    string               `json:"provider"`
}

type chatResponse struct {
	Message string `json:"message"`
}

type charactersResponse struct {
	Characters []domain.Persona `json:"characters"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type surveyRequest struct {
	SelectedFeatures json.RawMessage `json:"selectedFeatures"`
	CustomInput      string          `json:"customInput"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type healthResponse struct {
	Status  string                   `json:"status"`
	Message string                   `json:"message"`
	Config  usecase.CollectionHealth `json:"config"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewHandler(chat ChatUseCase, collect CollectUseCase, personas PersonaLister, opts ...Option) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if collect == nil {
		return nil, errors.New("handler: collect use case must not be nil")
	}
	if personas == nil {
		return nil, errors.New("handler: persona lister must not be nil")
	}
	h := &Handler{chat: chat, collect: collect, personas: personas}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle routes an API Gateway proxy event. Failures are always rendered as a
// JSON error body; the returned error is reserved for the Lambda runtime and is
// always nil.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := headerValue(req, correlationHeader)
	if correlationID == "" {
		correlationID = newCorrelationID()
	}
	path := normalizePath(req.Path)
	method := strings.ToUpper(req.HTTPMethod)

	resp := h.route(ctx, path, method, req)
	resp.Headers[correlationHeader] = correlationID

	elapsed := time.Since(start)
	if h.recorder != nil {
		h.recorder.ObserveRequest(routeLabel(path), method, resp.StatusCode, elapsed)
	}
	slog.Info("request handled",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"correlation_id", correlationID,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}

func (h *Handler) route(ctx context.Context, path, method string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	switch path {
	case PathChat:
		if method != http.MethodPost {
			return methodNotAllowed(http.MethodPost)
		}
		return h.handleChat(ctx, req, "")
	case PathClaude:
		if method != http.MethodPost {
			return methodNotAllowed(http.MethodPost)
		}
		return h.handleChat(ctx, req, domain.ProviderAnthropic)
	case PathCharacters:
		if method != http.MethodGet {
			return methodNotAllowed(http.MethodGet)
		}
		return jsonResponse(http.StatusOK, charactersResponse{Characters: h.personas.All()})
	case PathEmailCollection:
		switch method {
		case http.MethodPost:
			return h.handleEmail(ctx, req)
		case http.MethodGet:
			return h.handleHealth(ctx, "Email collection API is running")
		}
		return methodNotAllowed(http.MethodGet, http.MethodPost)
	case PathSurvey:
		switch method {
		case http.MethodPost:
			return h.handleSurvey(ctx, req)
		case http.MethodGet:
			return h.handleHealth(ctx, "Survey API is running")
		}
		return methodNotAllowed(http.MethodGet, http.MethodPost)
	}
	return jsonResponse(http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "route not found"})
}

func (h *Handler) handleChat(ctx context.Context, req events.APIGatewayProxyRequest, forced domain.ProviderMode) events.APIGatewayProxyResponse {
	var body chatRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errorResponseFor(&usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Err: err}, "")
	}
	mode := domain.ProviderMode(strings.ToLower(strings.TrimSpace(body.Provider)))
	if forced != "" {
		mode = forced
	}
	out, err := h.chat.Complete(ctx, usecase.ChatInput{
		PersonaID: body.CharacterID,
		Message:   body.Message,
		History:   body.Messages,
		Provider:  mode,
	})
	if err != nil {
		return errorResponseFor(err, "")
	}
	return jsonResponse(http.StatusOK, chatResponse{Message: out.Message})
}

func (h *Handler) handleEmail(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body emailRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errorResponseFor(&usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Err: err}, "")
	}
	rec, err := h.collect.SubmitEmail(ctx, usecase.EmailInput{Email: body.Email, Client: clientInfo(req)})
	if err != nil {
		return errorResponseFor(err, "이메일 등록 중 오류가 발생했습니다.")
	}
	return jsonResponse(http.StatusOK, submitResponse{
		Success: true,
		Message: "이메일이 성공적으로 등록되었습니다.",
		Data:    rec,
	})
}

func (h *Handler) handleSurvey(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body surveyRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errorResponseFor(&usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Err: err}, "")
	}
	resp, err := h.collect.SubmitSurvey(ctx, usecase.SurveyInput{
		SelectedFeatures: decodeFeatures(body.SelectedFeatures),
		CustomInput:      body.CustomInput,
		Client:           clientInfo(req),
	})
	if err != nil {
		return errorResponseFor(err, "설문 응답 저장 중 오류가 발생했습니다.")
	}
	return jsonResponse(http.StatusOK, submitResponse{
		Success: true,
		Message: "설문 응답이 성공적으로 저장되었습니다.",
		Data:    resp,
	})
}

func (h *Handler) handleHealth(ctx context.Context, message string) events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusOK, healthResponse{
		Status:  "OK",
		Message: message,
		Config:  h.collect.Health(ctx),
	})
}

// decodeFeatures returns nil unless raw is a JSON array of strings.
func decodeFeatures(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var features []string
	if err := json.Unmarshal(trimmed, &features); err != nil {
		return nil
	}
	if features == nil {
		features = []string{}
	}
	return features
}

func clientInfo(req events.APIGatewayProxyRequest) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent:    headerValue(req, "User-Agent"),
		ForwardedFor: headerValue(req, "X-Forwarded-For"),
		RealIP:       headerValue(req, "X-Real-IP"),
	}
}

func headerValue(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	for k, vs := range req.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
	}
	return ""
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func routeLabel(path string) string {
	switch path {
	case PathChat, PathClaude, PathCharacters, PathEmailCollection, PathSurvey:
		return path
	}
	return "unmatched"
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
