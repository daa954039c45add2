package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"character-chat/internal/domain"
)

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) Token(context.Context) (string, error) { return f.token, f.err }

func TestToContents_SplitsSystemHistoryAndLastTurn(t *testing.T) {
	system, history, last, err := toContents([]domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "grandfather"},
		{Role: domain.RoleAssistant, Content: "우리 손자야~"},
		{Role: domain.RoleUser, Content: "할아버지!"},
		{Role: domain.RoleAssistant, Content: "그래, 잘 지냈구나."},
		{Role: domain.RoleUser, Content: "옛날 이야기 해주세요"},
	})
	require.NoError(t, err)
	require.Equal(t, "grandfather", system)

	require.Len(t, history, 2)
	require.Equal(t, "user", history[0].Role)
	require.Equal(t, genai.Text("할아버지!"), history[0].Parts[0])
	require.Equal(t, "model", history[1].Role)

	require.Equal(t, "user", last.Role)
	require.Equal(t, genai.Text("옛날 이야기 해주세요"), last.Parts[0])
}

func TestToContents_RequiresTrailingUserTurn(t *testing.T) {
	_, _, _, err := toContents([]domain.ChatMessage{{Role: domain.RoleSystem, Content: "x"}})
	require.Error(t, err)

	_, _, _, err = toContents([]domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	})
	require.Error(t, err)
}

func TestResponseText(t *testing.T) {
	require.Empty(t, responseText(nil))
	require.Empty(t, responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("멍멍! "), genai.Text("산책 가자멍!")}},
	}}}
	require.Equal(t, "멍멍! 산책 가자멍!", responseText(resp))
}

func TestComplete_ValidatesBeforeDialing(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	c, err := NewClient(fakeTokens{err: errors.New("no key")})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), nil, domain.CompletionConfig{})
	require.ErrorContains(t, err, "model")

	_, err = c.Complete(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, domain.CompletionConfig{Model: "gemini-1.5-flash-latest"})
	require.ErrorContains(t, err, "no key")
	require.NoError(t, c.Close())
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 429, Err: errors.New("quota")}
	require.Equal(t, 429, err.HTTPStatusCode())
	require.ErrorContains(t, err, "quota")
}
