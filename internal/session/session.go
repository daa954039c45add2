// Package session drives one interactive chat: the transcript for the
// selected persona, the engagement gate and the two promotional popups.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"character-chat/internal/domain"
	"character-chat/internal/engagement"
	"character-chat/internal/usecase"
)

const (
	DefaultPersonaID   = "elon-musk"
	DefaultSurveyDelay = 2 * time.Second

	// ApologyMessage replaces the assistant reply when a completion fails.
	ApologyMessage = "죄송합니다. 메시지 전송 중 오류가 발생했습니다."
)

// ErrBusy is returned while a previous request from the same session is in flight.
var ErrBusy = errors.New("session: a request is already in flight")

type Completer interface {
	Complete(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type Collector interface {
	SubmitEmail(ctx context.Context, in usecase.EmailInput) (domain.EmailRecord, error)
	SubmitSurvey(ctx context.Context, in usecase.SurveyInput) (domain.SurveyResponse, error)
}

type PersonaFinder interface {
	GetByID(id string) (domain.Persona, bool)
}

// scheduleFunc runs f after d and returns a function that cancels it.
type scheduleFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type Session struct {
	mu sync.Mutex

	personas  PersonaFinder
	completer Completer
	collector Collector
	gate      *engagement.Gate

	persona    domain.Persona
	provider   domain.ProviderMode
	transcript []domain.TranscriptEntry
	generation int
	busy       bool

	payment    *PaymentPopup
	survey     *SurveyPopup
	stopReveal func() bool
	closed     bool

	surveyDelay time.Duration
	schedule    scheduleFunc
	now         func() time.Time
	newID       func() string
}

type Option func(*Session) error

func WithSurveyDelay(d time.Duration) Option {
	return func(s *Session) error {
		if d < 0 {
			return errors.New("session: survey delay must not be negative")
		}
		s.surveyDelay = d
		return nil
	}
}

func WithProvider(mode domain.ProviderMode) Option {
	return func(s *Session) error {
		s.provider = mode
		return nil
	}
}

// WithPersona selects the starting persona instead of DefaultPersonaID.
func WithPersona(id string) Option {
	return func(s *Session) error {
		p, ok := s.personas.GetByID(id)
		if !ok {
			return usecase.NewError(usecase.ErrorInvalidPersona, "unknown_persona", nil)
		}
		s.persona = p
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) error {
		s.now = now
		return nil
	}
}

func New(personas PersonaFinder, completer Completer, collector Collector, gate *engagement.Gate, opts ...Option) (*Session, error) {
	if personas == nil {
		return nil, errors.New("session: persona finder must not be nil")
	}
	if completer == nil {
		return nil, errors.New("session: completer must not be nil")
	}
	if collector == nil {
		return nil, errors.New("session: collector must not be nil")
	}
	if gate == nil {
		return nil, errors.New("session: gate must not be nil")
	}
	s := &Session{
		personas:    personas,
		completer:   completer,
		collector:   collector,
		gate:        gate,
		surveyDelay: DefaultSurveyDelay,
		schedule:    afterFunc,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if p, ok := personas.GetByID(DefaultPersonaID); ok {
		s.persona = p
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.persona.ID == "" {
		return nil, errors.New("session: default persona " + DefaultPersonaID + " is not in the catalog")
	}
	s.resetTranscriptLocked()
	return s, nil
}

func (s *Session) Persona() domain.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

func (s *Session) Provider() domain.ProviderMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// SetProvider switches the provider for subsequent sends. Empty selects the
// server default.
func (s *Session) SetProvider(mode domain.ProviderMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = mode
}

// SelectPersona switches persona and restarts the transcript from its greeting.
func (s *Session) SelectPersona(id string) error {
	p, ok := s.personas.GetByID(id)
	if !ok {
		return usecase.NewError(usecase.ErrorInvalidPersona, "unknown_persona", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = p
	s.generation++
	s.resetTranscriptLocked()
	return nil
}

func (s *Session) Transcript() []domain.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) Gate() *engagement.Gate {
	return s.gate
}

// Send appends the user's message, counts it and asks the completer for a
// reply. On failure an apology entry is appended and the error returned.
func (s *Session) Send(ctx context.Context, text string) (domain.TranscriptEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.TranscriptEntry{}, usecase.NewError(usecase.ErrorInvalidInput, "empty_message", nil)
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.TranscriptEntry{}, ErrBusy
	}
	s.busy = true
	history := make([]domain.ChatMessage, 0, len(s.transcript))
	for _, e := range s.transcript {
		history = append(history, e.ChatMessage())
	}
	s.appendLocked(domain.RoleUser, text)
	in := usecase.ChatInput{
		PersonaID: s.persona.ID,
		Message:   text,
		History:   history,
		Provider:  s.provider,
	}
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if err := s.gate.IncrementMessageCount(ctx); err != nil {
		slog.Warn("engagement state not persisted", "err", err)
	}

	out, err := s.completer.Complete(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		// The persona changed while waiting; the reply belongs to a discarded transcript.
		if err != nil {
			return domain.TranscriptEntry{}, err
		}
		return domain.TranscriptEntry{}, nil
	}
	if err != nil {
		slog.Warn("chat completion failed", "persona", in.PersonaID, "err", err)
		s.appendLocked(domain.RoleAssistant, ApologyMessage)
		return domain.TranscriptEntry{}, err
	}
	return s.appendLocked(domain.RoleAssistant, out.Message), nil
}

// PaymentPopup returns the open payment popup, or nil when the gate says it
// should not be shown. The same instance is returned while it stays open.
func (s *Session) PaymentPopup() *PaymentPopup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gate.ShouldShowPaymentPopup() {
		s.payment = nil
		return nil
	}
	if s.payment == nil {
		s.payment = newPaymentPopup(s)
	}
	return s.payment
}

func (s *Session) SurveyPopup() *SurveyPopup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gate.ShouldShowSurveyPopup() {
		s.survey = nil
		return nil
	}
	if s.survey == nil {
		s.survey = newSurveyPopup(s)
	}
	return s.survey
}

// Close cancels a pending survey reveal. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.stopReveal != nil {
		s.stopReveal()
		s.stopReveal = nil
	}
}

func (s *Session) scheduleReveal(p *PaymentPopup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.stopReveal != nil {
		s.stopReveal()
	}
	s.stopReveal = s.schedule(s.surveyDelay, func() {
		s.gate.RevealSurvey()
		p.markRevealed()
	})
}

func (s *Session) resetTranscriptLocked() {
	s.transcript = nil
	s.appendLocked(domain.RoleAssistant, s.persona.Greeting)
}

func (s *Session) appendLocked(role, content string) domain.TranscriptEntry {
	e := domain.TranscriptEntry{
		ID:        s.newID(),
		Content:   content,
		Role:      role,
		CreatedAt: s.now(),
	}
	s.transcript = append(s.transcript, e)
	return e
}
