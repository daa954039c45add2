package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"character-chat/internal/catalog"
	"character-chat/internal/domain"
	"character-chat/internal/engagement"
	"character-chat/internal/usecase"
)

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	block chan struct{}
	calls []usecase.ChatInput
}

func (f *fakeCompleter) Complete(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	block, reply, err := f.block, f.reply, f.err
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return usecase.ChatOutput{}, err
	}
	return usecase.ChatOutput{Message: reply, Provider: in.Provider}, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeCollector struct {
	emailErr  error
	surveyErr error
	emails    []usecase.EmailInput
	surveys   []usecase.SurveyInput
}

func (f *fakeCollector) SubmitEmail(_ context.Context, in usecase.EmailInput) (domain.EmailRecord, error) {
	f.emails = append(f.emails, in)
	if f.emailErr != nil {
		return domain.EmailRecord{}, f.emailErr
	}
	return domain.EmailRecord{ID: "e-1", Email: in.Email}, nil
}

func (f *fakeCollector) SubmitSurvey(_ context.Context, in usecase.SurveyInput) (domain.SurveyResponse, error) {
	f.surveys = append(f.surveys, in)
	if f.surveyErr != nil {
		return domain.SurveyResponse{}, f.surveyErr
	}
	return domain.SurveyResponse{ID: "s-1", SelectedFeatures: in.SelectedFeatures}, nil
}

// fakeScheduler records scheduled callbacks so tests decide when they fire.
type fakeScheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	pending func()
	stopped int
}

func (f *fakeScheduler) schedule(d time.Duration, fn func()) func() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	f.pending = fn
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped++
		was := f.pending != nil
		f.pending = nil
		return was
	}
}

func (f *fakeScheduler) fire() {
	f.mu.Lock()
	fn := f.pending
	f.pending = nil
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fixture struct {
	s         *Session
	completer *fakeCompleter
	collector *fakeCollector
	gate      *engagement.Gate
	kv        *engagement.MemoryKV
	sched     *fakeScheduler
}

func openGate(t *testing.T, kv engagement.KV) *engagement.Gate {
	t.Helper()
	store, err := engagement.NewKVStore(kv)
	require.NoError(t, err)
	g, err := engagement.Open(context.Background(), store)
	require.NoError(t, err)
	return g
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		completer: &fakeCompleter{reply: "답장"},
		collector: &fakeCollector{},
		kv:        engagement.NewMemoryKV(),
		sched:     &fakeScheduler{},
	}
	f.gate = openGate(t, f.kv)
	s, err := New(catalog.Default(), f.completer, f.collector, f.gate, opts...)
	require.NoError(t, err)
	s.schedule = f.sched.schedule
	t.Cleanup(s.Close)
	f.s = s
	return f
}

func requireCode(t *testing.T, err error, code usecase.ErrorCode) {
	t.Helper()
	var ucErr *usecase.Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, code, ucErr.Code)
}

func TestNew_Validation(t *testing.T) {
	cat := catalog.Default()
	g := openGate(t, engagement.NewMemoryKV())
	_, err := New(nil, &fakeCompleter{}, &fakeCollector{}, g)
	require.Error(t, err)
	_, err = New(cat, nil, &fakeCollector{}, g)
	require.Error(t, err)
	_, err = New(cat, &fakeCompleter{}, nil, g)
	require.Error(t, err)
	_, err = New(cat, &fakeCompleter{}, &fakeCollector{}, nil)
	require.Error(t, err)
	_, err = New(cat, &fakeCompleter{}, &fakeCollector{}, g, WithPersona("nobody"))
	requireCode(t, err, usecase.ErrorInvalidPersona)
	_, err = New(cat, &fakeCompleter{}, &fakeCollector{}, g, WithSurveyDelay(-time.Second))
	require.Error(t, err)
}

func TestNew_SeedsDefaultGreeting(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, DefaultPersonaID, f.s.Persona().ID)
	tr := f.s.Transcript()
	require.Len(t, tr, 1)
	require.Equal(t, domain.RoleAssistant, tr[0].Role)
	require.Equal(t, f.s.Persona().Greeting, tr[0].Content)
	require.NotEmpty(t, tr[0].ID)
}

func TestSend_BlankIsIgnored(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Send(context.Background(), "   ")
	requireCode(t, err, usecase.ErrorInvalidInput)
	require.Zero(t, f.completer.callCount())
	require.Zero(t, f.gate.State().MessageCount)
	require.Len(t, f.s.Transcript(), 1)
}

func TestSend_AppendsAndSendsPriorHistory(t *testing.T) {
	f := newFixture(t, WithProvider(domain.ProviderAnthropic))
	greeting := f.s.Transcript()[0]

	entry, err := f.s.Send(context.Background(), "  안녕  ")
	require.NoError(t, err)
	require.Equal(t, "답장", entry.Content)
	require.Equal(t, domain.RoleAssistant, entry.Role)

	require.Len(t, f.completer.calls, 1)
	in := f.completer.calls[0]
	require.Equal(t, "안녕", in.Message)
	require.Equal(t, DefaultPersonaID, in.PersonaID)
	require.Equal(t, domain.ProviderAnthropic, in.Provider)
	require.Equal(t, []domain.ChatMessage{greeting.ChatMessage()}, in.History)

	tr := f.s.Transcript()
	require.Len(t, tr, 3)
	require.Equal(t, domain.RoleUser, tr[1].Role)
	require.Equal(t, "안녕", tr[1].Content)
	require.Equal(t, 1, f.gate.State().MessageCount)
}

func TestSend_FailureAppendsApologyAndStillCounts(t *testing.T) {
	f := newFixture(t)
	f.completer.err = usecase.NewError(usecase.ErrorUpstream, "openai_error", nil)

	_, err := f.s.Send(context.Background(), "hi")
	requireCode(t, err, usecase.ErrorUpstream)

	tr := f.s.Transcript()
	require.Len(t, tr, 3)
	require.Equal(t, ApologyMessage, tr[2].Content)
	require.Equal(t, 1, f.gate.State().MessageCount)
}

func TestSend_BusyWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.completer.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.s.Send(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.completer.callCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err := f.s.Send(context.Background(), "second")
	require.ErrorIs(t, err, ErrBusy)

	close(f.completer.block)
	require.NoError(t, <-done)
	require.Equal(t, 1, f.gate.State().MessageCount)
}

func TestSelectPersona(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Send(context.Background(), "hi")
	require.NoError(t, err)

	err = f.s.SelectPersona("nobody")
	requireCode(t, err, usecase.ErrorInvalidPersona)
	require.Len(t, f.s.Transcript(), 3)

	require.NoError(t, f.s.SelectPersona("pet-dog"))
	tr := f.s.Transcript()
	require.Len(t, tr, 1)
	require.Equal(t, f.s.Persona().Greeting, tr[0].Content)
	require.Equal(t, "pet-dog", f.s.Persona().ID)
	require.Equal(t, 1, f.gate.State().MessageCount)
}

func TestSend_ReplyDroppedAfterPersonaSwitch(t *testing.T) {
	f := newFixture(t)
	f.completer.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.s.Send(context.Background(), "hi")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.completer.callCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, f.s.SelectPersona("grandfather"))
	close(f.completer.block)
	require.NoError(t, <-done)

	tr := f.s.Transcript()
	require.Len(t, tr, 1)
	require.Equal(t, "grandfather", f.s.Persona().ID)
}

func TestSetProvider(t *testing.T) {
	f := newFixture(t)
	f.s.SetProvider(domain.ProviderGemini)
	require.Equal(t, domain.ProviderGemini, f.s.Provider())
	_, err := f.s.Send(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, domain.ProviderGemini, f.completer.calls[0].Provider)
}

func TestCountingFailureDoesNotBlockSend(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	g, err := engagement.Open(context.Background(), &brokenStore{})
	require.NoError(t, err)
	s, err := New(catalog.Default(), completer, &fakeCollector{}, g)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Send(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, 1, g.State().MessageCount)
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (engagement.State, error) { return engagement.State{}, nil }
func (brokenStore) Save(context.Context, engagement.State) error   { return errors.New("disk full") }
