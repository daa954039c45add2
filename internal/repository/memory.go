package repository

import (
	"context"
	"fmt"
	"sync"

	"character-chat/internal/domain"
)

// MemoryStore keeps collection records in process memory. It backs local
// development and tests; records are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	emails  map[string]domain.EmailRecord
	surveys []domain.SurveyResponse
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{emails: make(map[string]domain.EmailRecord)}
}

func (m *MemoryStore) Backend() string { return "memory" }

func (m *MemoryStore) SaveEmail(_ context.Context, rec domain.EmailRecord) (domain.EmailRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[rec.Email]; ok {
		return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w", domain.ErrDuplicate)
	}
	m.emails[rec.Email] = rec
	return rec, nil
}

func (m *MemoryStore) SaveSurvey(_ context.Context, resp domain.SurveyResponse) (domain.SurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surveys = append(m.surveys, resp)
	return resp, nil
}

// Emails returns the number of stored addresses.
func (m *MemoryStore) Emails() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.emails)
}

// Surveys returns a copy of the stored survey answers in insertion order.
func (m *MemoryStore) Surveys() []domain.SurveyResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SurveyResponse, len(m.surveys))
	copy(out, m.surveys)
	return out
}
