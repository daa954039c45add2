package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"character-chat/internal/domain"
	"character-chat/internal/usecase"
)

type captured struct {
	method string
	path   string
	body   map[string]any
}

func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &c.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func mustNew(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url + "/")
	require.NoError(t, err)
	return c
}

func TestNew_EmptyBaseURL(t *testing.T) {
	_, err := New("  ")
	require.Error(t, err)
}

func TestComplete_SendsChatRequest(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"message":"반가워요"}`)
	c := mustNew(t, srv.URL)

	out, err := c.Complete(context.Background(), usecase.ChatInput{
		PersonaID: "elon-musk",
		Message:   "안녕",
		History:   []domain.ChatMessage{{Role: "assistant", Content: "greeting"}},
		Provider:  domain.ProviderGemini,
	})
	require.NoError(t, err)
	require.Equal(t, "반가워요", out.Message)
	require.Equal(t, domain.ProviderGemini, out.Provider)

	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/api/chat", got.path)
	require.Equal(t, "안녕", got.body["message"])
	require.Equal(t, "elon-musk", got.body["characterId"])
	require.Equal(t, "gemini", got.body["provider"])
	require.Len(t, got.body["messages"], 1)
}

func TestComplete_EmptyHistoryIsArray(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"message":"ok"}`)
	c := mustNew(t, srv.URL)
	_, err := c.Complete(context.Background(), usecase.ChatInput{PersonaID: "p", Message: "hi"})
	require.NoError(t, err)
	require.Equal(t, []any{}, got.body["messages"])
	_, hasProvider := got.body["provider"]
	require.False(t, hasProvider)
}

func TestErrors_DecodeServerCode(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   usecase.ErrorCode
	}{
		{"conflict body", http.StatusConflict, `{"error":"CONFLICT","message":"이미 등록된 이메일 주소입니다."}`, usecase.ErrorConflict},
		{"rate limited body", http.StatusTooManyRequests, `{"error":"RATE_LIMITED","message":"slow down"}`, usecase.ErrorRateLimited},
		{"plain 409", http.StatusConflict, `conflict`, usecase.ErrorConflict},
		{"plain 502", http.StatusBadGateway, `bad gateway`, usecase.ErrorUpstream},
		{"plain 404", http.StatusNotFound, `nope`, usecase.ErrorInvalidInput},
		{"plain 500", http.StatusInternalServerError, ``, usecase.ErrorBackendUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.body)
			c := mustNew(t, srv.URL)
			_, err := c.SubmitEmail(context.Background(), usecase.EmailInput{Email: "a@b.co"})

			var ucErr *usecase.Error
			require.ErrorAs(t, err, &ucErr)
			require.Equal(t, tc.code, ucErr.Code)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			require.Equal(t, tc.status, statusErr.HTTPStatusCode())
		})
	}
}

func TestSubmitEmail_ReturnsRecord(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"success":true,"message":"ok","data":{"id":"e-1","email":"a@b.co","source":"payment_popup","user_agent":"unknown","ip_address":null,"created_at":"2025-01-01T00:00:00Z"}}`)
	c := mustNew(t, srv.URL)
	rec, err := c.SubmitEmail(context.Background(), usecase.EmailInput{Email: "a@b.co"})
	require.NoError(t, err)
	require.Equal(t, "e-1", rec.ID)
	require.Nil(t, rec.IPAddress)
	require.Equal(t, "/api/email-collection", got.path)
	require.Equal(t, "a@b.co", got.body["email"])
}

func TestSubmitSurvey_SendsArray(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"success":true,"message":"ok","data":{"id":"s-1","selected_features":[]}}`)
	c := mustNew(t, srv.URL)
	resp, err := c.SubmitSurvey(context.Background(), usecase.SurveyInput{CustomInput: "more"})
	require.NoError(t, err)
	require.Equal(t, "s-1", resp.ID)
	require.Equal(t, []any{}, got.body["selectedFeatures"])
	require.Equal(t, "more", got.body["customInput"])
}

func TestCharacters(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"characters":[{"id":"elon-musk","name":"일론 머스크","category":"helper"}]}`)
	c := mustNew(t, srv.URL)
	personas, err := c.Characters(context.Background())
	require.NoError(t, err)
	require.Len(t, personas, 1)
	require.Equal(t, domain.CategoryHelper, personas[0].Category)
	require.Equal(t, http.MethodGet, got.method)
}

func TestUnreachable(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	c := mustNew(t, url)
	_, err := c.Complete(context.Background(), usecase.ChatInput{PersonaID: "p", Message: "hi"})
	var ucErr *usecase.Error
	require.True(t, errors.As(err, &ucErr))
	require.Equal(t, usecase.ErrorBackendUnavailable, ucErr.Code)
}
