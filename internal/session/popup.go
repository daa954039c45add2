package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"character-chat/internal/usecase"
)

// ErrWrongStage is returned when a popup action does not apply to its current stage.
var ErrWrongStage = errors.New("session: action not available at this stage")

type PaymentStage int

const (
	StageOffer PaymentStage = iota
	StageEmailForm
	StageSubmitted
)

func (st PaymentStage) String() string {
	switch st {
	case StageOffer:
		return "offer"
	case StageEmailForm:
		return "email_form"
	case StageSubmitted:
		return "submitted"
	}
	return "unknown"
}

// PaymentPopup is the freemium offer shown after the message threshold. It
// collects an email address and then schedules the survey popup.
type PaymentPopup struct {
	s *Session

	mu         sync.Mutex
	stage      PaymentStage
	submitting bool
	lastErr    error

	revealOnce sync.Once
	revealed   chan struct{}
}

func newPaymentPopup(s *Session) *PaymentPopup {
	return &PaymentPopup{s: s, revealed: make(chan struct{})}
}

func (p *PaymentPopup) Stage() PaymentStage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// OpenEmailForm moves from the offer to the email form.
func (p *PaymentPopup) OpenEmailForm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StageOffer {
		return ErrWrongStage
	}
	p.stage = StageEmailForm
	return nil
}

// SubmitEmail sends the address once the privacy consent is given. Rejected
// input never reaches the collector.
func (p *PaymentPopup) SubmitEmail(ctx context.Context, address string, consent bool) error {
	address = strings.TrimSpace(address)

	p.mu.Lock()
	if p.stage != StageEmailForm {
		p.mu.Unlock()
		return ErrWrongStage
	}
	if address == "" {
		p.mu.Unlock()
		return usecase.NewError(usecase.ErrorInvalidInput, "empty_email", nil)
	}
	if !consent {
		p.mu.Unlock()
		return usecase.NewError(usecase.ErrorInvalidInput, "consent_required", nil)
	}
	if p.submitting {
		p.mu.Unlock()
		return ErrBusy
	}
	p.submitting = true
	p.mu.Unlock()

	_, err := p.s.collector.SubmitEmail(ctx, usecase.EmailInput{Email: address})

	p.mu.Lock()
	p.submitting = false
	p.lastErr = err
	if err == nil {
		p.stage = StageSubmitted
	}
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.s.scheduleReveal(p)
	return nil
}

// Err returns the error from the last submission attempt.
func (p *PaymentPopup) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// SurveyRevealed is closed once the delayed survey reveal has fired.
func (p *PaymentPopup) SurveyRevealed() <-chan struct{} {
	return p.revealed
}

func (p *PaymentPopup) markRevealed() {
	p.revealOnce.Do(func() { close(p.revealed) })
}

// Close dismisses the popup for good, whatever its stage. A scheduled survey
// reveal still fires.
func (p *PaymentPopup) Close(ctx context.Context) error {
	err := p.s.gate.AcknowledgePayment(ctx)
	p.s.mu.Lock()
	if p.s.payment == p {
		p.s.payment = nil
	}
	p.s.mu.Unlock()
	return err
}

// Feature is one selectable survey option.
type Feature struct {
	ID    string
	Label string
}

var Features = []Feature{
	{ID: "custom_character", Label: "새로운 커스터마이징 캐릭터 생성"},
	{ID: "visual_content", Label: "이미지나 영상 시각화"},
	{ID: "adult_content", Label: "19금 컨텐츠"},
	{ID: "diverse_characters", Label: "다양한 캐릭터"},
}

func knownFeature(id string) bool {
	for _, f := range Features {
		if f.ID == id {
			return true
		}
	}
	return false
}

// SurveyPopup collects feature preferences after an email submission.
type SurveyPopup struct {
	s *Session

	mu         sync.Mutex
	selected   []string
	comment    string
	submitting bool
	submitted  bool
	lastErr    error
}

func newSurveyPopup(s *Session) *SurveyPopup {
	return &SurveyPopup{s: s, selected: []string{}}
}

// Toggle selects or deselects a feature, keeping selection order.
func (p *SurveyPopup) Toggle(id string) error {
	if !knownFeature(id) {
		return usecase.NewError(usecase.ErrorInvalidInput, "unknown_feature", nil)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sel := range p.selected {
		if sel == id {
			p.selected = append(p.selected[:i], p.selected[i+1:]...)
			return nil
		}
	}
	p.selected = append(p.selected, id)
	return nil
}

func (p *SurveyPopup) Selected() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.selected))
	copy(out, p.selected)
	return out
}

func (p *SurveyPopup) SetComment(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comment = strings.TrimSpace(text)
}

func (p *SurveyPopup) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.submitted {
		p.mu.Unlock()
		return ErrWrongStage
	}
	if p.submitting {
		p.mu.Unlock()
		return ErrBusy
	}
	p.submitting = true
	in := usecase.SurveyInput{
		SelectedFeatures: append([]string{}, p.selected...),
		CustomInput:      p.comment,
	}
	p.mu.Unlock()

	_, err := p.s.collector.SubmitSurvey(ctx, in)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitting = false
	p.lastErr = err
	if err == nil {
		p.submitted = true
	}
	return err
}

func (p *SurveyPopup) Submitted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted
}

func (p *SurveyPopup) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Close dismisses the survey for good.
func (p *SurveyPopup) Close(ctx context.Context) error {
	err := p.s.gate.AcknowledgeSurvey(ctx)
	p.s.mu.Lock()
	if p.s.survey == p {
		p.s.survey = nil
	}
	p.s.mu.Unlock()
	return err
}
