package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Gate decides when the payment and survey popups are shown. The in-memory
// state is always updated first; a failed save is reported but not rolled back.
type Gate struct {
	mu    sync.Mutex
	store Store
	state State
}

// Open hydrates a Gate from store.
func Open(ctx context.Context, store Store) (*Gate, error) {
	if store == nil {
		return nil, errors.New("engagement: store must not be nil")
	}
	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("engagement: load state: %w", err)
	}
	state.SurveyVisible = false
	if state.MessageCount < 0 {
		state.MessageCount = 0
	}
	return &Gate{store: store, state: state}, nil
}

func (g *Gate) IncrementMessageCount(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.MessageCount++
	return g.save(ctx, "increment")
}

// AcknowledgePayment permanently hides the payment popup for this store scope.
func (g *Gate) AcknowledgePayment(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.PaymentAcknowledged = true
	return g.save(ctx, "acknowledge payment")
}

// RevealSurvey marks the survey popup visible for the current session only.
func (g *Gate) RevealSurvey() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.SurveyVisible = true
}

func (g *Gate) AcknowledgeSurvey(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.SurveyVisible = false
	g.state.SurveyAcknowledged = true
	return g.save(ctx, "acknowledge survey")
}

func (g *Gate) ShouldShowPaymentPopup() bool {
	return g.State().ShouldShowPaymentPopup()
}

func (g *Gate) ShouldShowSurveyPopup() bool {
	return g.State().ShouldShowSurveyPopup()
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) save(ctx context.Context, op string) error {
	if err := g.store.Save(ctx, g.state); err != nil {
		return fmt.Errorf("engagement: %s: %w", op, err)
	}
	return nil
}
