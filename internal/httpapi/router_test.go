package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"character-chat/handler"
	"character-chat/internal/catalog"
	"character-chat/internal/domain"
	"character-chat/internal/repository"
	"character-chat/internal/usecase"
)

type fakeProxy struct {
	resp events.APIGatewayProxyResponse
	err  error
	in   events.APIGatewayProxyRequest
}

func (f *fakeProxy) Handle(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	f.in = req
	return f.resp, f.err
}

func TestNewRouter_NilHandler(t *testing.T) {
	_, err := NewRouter(nil)
	require.Error(t, err)
}

func TestRouter_ConvertsRequest(t *testing.T) {
	fp := &fakeProxy{resp: events.APIGatewayProxyResponse{
		StatusCode: http.StatusCreated,
		Headers:    map[string]string{"X-Correlation-Id": "abc", "Content-Type": "application/json"},
		Body:       `{"ok":true}`,
	}}
	r, err := NewRouter(fp)
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/chat?debug=1", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	req.Header.Set("X-Correlation-Id", "from-client")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "abc", resp.Header.Get("X-Correlation-Id"))
	body, _ := io.ReadAll(resp.Body)
	require.JSONEq(t, `{"ok":true}`, string(body))

	require.Equal(t, http.MethodPost, fp.in.HTTPMethod)
	require.Equal(t, "/api/chat", fp.in.Path)
	require.Equal(t, `{"message":"hi"}`, fp.in.Body)
	require.Equal(t, "203.0.113.1", fp.in.Headers["X-Forwarded-For"])
	require.Equal(t, "from-client", fp.in.Headers["X-Correlation-Id"])
	require.Equal(t, "1", fp.in.QueryStringParameters["debug"])
}

func TestRouter_RequestIDBecomesCorrelationID(t *testing.T) {
	fp := &fakeProxy{resp: events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: map[string]string{}}}
	r, err := NewRouter(fp)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/characters", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, fp.in.Headers["X-Correlation-Id"])
}

func TestRouter_HandlerErrorIs500(t *testing.T) {
	r, err := NewRouter(&fakeProxy{err: errors.New("boom")})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/characters", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_HealthzAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "charchat_requests_total 0\n")
	})
	r, err := NewRouter(&fakeProxy{}, WithMetricsHandler(metrics))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "charchat_requests_total")
}

type echoProvider struct{}

func (echoProvider) Complete(_ context.Context, msgs []domain.ChatMessage, _ domain.CompletionConfig) (string, error) {
	return "echo: " + msgs[len(msgs)-1].Content, nil
}

func newRealServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat := catalog.Default()
	chat, err := usecase.NewChatService(cat, map[domain.ProviderMode]usecase.ProviderBinding{
		domain.ProviderOpenAI:    {Provider: echoProvider{}},
		domain.ProviderAnthropic: {Provider: echoProvider{}},
	}, domain.ProviderOpenAI)
	require.NoError(t, err)
	h, err := handler.NewHandler(chat, usecase.NewCollectService(repository.NewMemoryStore(), "test"), cat)
	require.NoError(t, err)
	r, err := NewRouter(h)
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newRealServer(t)

	status, body := post(t, srv.URL+"/api/chat", `{"message":"hi","characterId":"elon-musk"}`)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"message":"echo: hi"}`, body)

	status, _ = post(t, srv.URL+"/api/claude/", `{"message":"hi","characterId":"elon-musk"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = post(t, srv.URL+"/api/email-collection", `{"email":"Fan@Example.com"}`)
	require.Equal(t, http.StatusOK, status)
	status, body = post(t, srv.URL+"/api/email-collection", `{"email":"fan@example.com"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Contains(t, body, `"CONFLICT"`)

	status, _ = post(t, srv.URL+"/api/survey", `{"selectedFeatures":[]}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = post(t, srv.URL+"/api/survey", `{"selectedFeatures":null}`)
	require.Equal(t, http.StatusBadRequest, status)

	resp, err := http.Get(srv.URL + "/api/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-Id"))

	resp, err = http.Get(srv.URL + "/nowhere")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
