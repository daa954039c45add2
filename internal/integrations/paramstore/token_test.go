package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeGetter is a minimal Getter stub.
type fakeGetter struct {
	val   string
	err   error
	calls int
	names []string
}

func (f *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	f.calls++
	f.names = append(f.names, name)
	return f.val, f.err
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken(" sk-env ").Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-env", tok)

	_, err = StaticToken("").Token(context.Background())
	require.Error(t, err)
}

func TestParamToken_CachesSuccess(t *testing.T) {
	g := &fakeGetter{val: `{"token":"sk-from-ssm"}`}
	p, err := NewParamToken(g, TokenName("/character-chat/", "open-ai-token"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tok, err := p.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "sk-from-ssm", tok)
	}
	require.Equal(t, 1, g.calls, "SSM must only be called once per process lifetime")
	require.Equal(t, []string{"/character-chat/open-ai-token"}, g.names)
}

func TestParamToken_RetriesAfterFailure(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	p, err := NewParamToken(g, "/x/token")
	require.NoError(t, err)

	_, err = p.Token(context.Background())
	require.ErrorContains(t, err, "ssm unavailable")

	g.err = nil
	g.val = `{"token":"sk-late"}`
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-late", tok)
	require.Equal(t, 2, g.calls)
}

func TestParamToken_BadPayloads(t *testing.T) {
	cases := []struct {
		name string
		val  string
		want string
	}{
		{"missing token field", `{"other":"value"}`, "API token is empty"},
		{"malformed json", `{"broken`, "unmarshal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewParamToken(&fakeGetter{val: tc.val}, "/x/token")
			require.NoError(t, err)
			_, err = p.Token(context.Background())
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestNewParamToken_Validation(t *testing.T) {
	_, err := NewParamToken(nil, "/x")
	require.Error(t, err)

	_, err = NewParamToken(&fakeGetter{}, " ")
	require.Error(t, err)
}
