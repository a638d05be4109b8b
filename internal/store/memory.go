package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps cases in process memory. It is used when no database is
// configured and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	cases  map[uuid.UUID]*CaseRecord
	events map[uuid.UUID][]*CaseEvent
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:  make(map[uuid.UUID]*CaseRecord),
		events: make(map[uuid.UUID][]*CaseEvent),
		now:    time.Now,
	}
}

func (s *MemoryStore) CreateCase(_ context.Context, rec *CaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if _, ok := s.cases[rec.ID]; ok {
		return fmt.Errorf("case %s already exists", rec.ID)
	}
	now := s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.cases[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) GetCase(_ context.Context, id uuid.UUID) (*CaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.cases[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) ListCases(_ context.Context, filter CaseFilter) ([]*CaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*CaseRecord
	for _, rec := range s.cases {
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.Name != "" && rec.Name != filter.Name {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateCase(_ context.Context, rec *CaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.cases[rec.ID]
	if !ok {
		return fmt.Errorf("case %s not found", rec.ID)
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.now()
	s.cases[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) DeleteCase(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cases[id]; !ok {
		return fmt.Errorf("case %s not found", id)
	}
	delete(s.cases, id)
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) CreateCaseEvent(_ context.Context, event *CaseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = s.now()
	cp := *event
	s.events[event.CaseID] = append(s.events[event.CaseID], &cp)
	return nil
}

func (s *MemoryStore) GetCaseEvents(_ context.Context, caseID uuid.UUID) ([]*CaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CaseEvent, 0, len(s.events[caseID]))
	for _, e := range s.events[caseID] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) GetStats(_ context.Context) (*CaseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &CaseStats{Total: len(s.cases)}
	for _, rec := range s.cases {
		countStatus(stats, rec.Status, 1)
	}
	return stats, nil
}

func countStatus(stats *CaseStats, status CaseStatus, n int) {
	switch status {
	case StatusBuilt:
		stats.Built += n
	case StatusEvaluated:
		stats.Evaluated += n
	case StatusAppreciated:
		stats.Appreciated += n
	case StatusOptimized:
		stats.Optimized += n
	}
}

func (s *MemoryStore) Close() error { return nil }
