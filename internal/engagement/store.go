package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Durable key names. Acknowledgement keys hold "true" once set and are absent
// otherwise.
const (
	KeyMessageCount = "chatMessageCount"
	KeyPaymentShown = "paymentPopupShown"
	KeySurveyShown  = "surveyPopupShown"
)

const flagTrue = "true"

// Store is the typed persistence boundary of the Gate.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// KV is a string key/value medium scoped to one durable scope.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// KVStore maps State onto the fixed key layout of a KV medium.
type KVStore struct {
	kv KV
}

func NewKVStore(kv KV) (*KVStore, error) {
	if kv == nil {
		return nil, errors.New("engagement: kv must not be nil")
	}
	return &KVStore{kv: kv}, nil
}

func (s *KVStore) Load(ctx context.Context) (State, error) {
	var state State

	raw, ok, err := s.kv.Get(ctx, KeyMessageCount)
	if err != nil {
		return State{}, fmt.Errorf("engagement: Load %s: %w", KeyMessageCount, err)
	}
	if ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(raw))
		if convErr != nil || n < 0 {
			slog.Warn("engagement: ignoring unreadable message count", "value", raw)
			n = 0
		}
		state.MessageCount = n
	}

	state.PaymentAcknowledged, err = s.flag(ctx, KeyPaymentShown)
	if err != nil {
		return State{}, err
	}
	state.SurveyAcknowledged, err = s.flag(ctx, KeySurveyShown)
	if err != nil {
		return State{}, err
	}
	return state, nil
}

// Save writes the counter and any set acknowledgement flag. Flags are never
// cleared.
func (s *KVStore) Save(ctx context.Context, state State) error {
	if err := s.kv.Set(ctx, KeyMessageCount, strconv.Itoa(state.MessageCount)); err != nil {
		return fmt.Errorf("engagement: Save %s: %w", KeyMessageCount, err)
	}
	if state.PaymentAcknowledged {
		if err := s.kv.Set(ctx, KeyPaymentShown, flagTrue); err != nil {
			return fmt.Errorf("engagement: Save %s: %w", KeyPaymentShown, err)
		}
	}
	if state.SurveyAcknowledged {
		if err := s.kv.Set(ctx, KeySurveyShown, flagTrue); err != nil {
			return fmt.Errorf("engagement: Save %s: %w", KeySurveyShown, err)
		}
	}
	return nil
}

func (s *KVStore) flag(ctx context.Context, key string) (bool, error) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("engagement: Load %s: %w", key, err)
	}
	return ok && v == flagTrue, nil
}
