package infra

import (
	"context"
	"sync"
	"time"

	"pagegen-server/pagecache/domain"
)

type Counters struct {
	Success int64
	Failure int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu          sync.Mutex
	total       Counters
	lastSuccess time.Time
	lastFailure time.Time
	totalTime   time.Duration

	events []domain.StatsEvent
	keep   int
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithKeepEvents guarda os últimos n eventos (0 desliga).
func WithKeepEvents(n int) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.keep = n }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Outcome {
	case domain.OutcomeSuccess:
		s.total.Success++
		s.lastSuccess = ev.At
		s.totalTime += ev.Duration
	case domain.OutcomeFailure:
		s.total.Failure++
		s.lastFailure = ev.At
		s.totalTime += ev.Duration
	}

	if s.keep > 0 {
		s.events = append(s.events, ev)
		if len(s.events) > s.keep {
			s.events = s.events[len(s.events)-s.keep:]
		}
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// MeanDuration é a média de duração das gerações registradas.
func (s *MemoryStatsStore) MeanDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.total.Success + s.total.Failure
	if n == 0 {
		return 0
	}
	return s.totalTime / time.Duration(n)
}

func (s *MemoryStatsStore) Events() []domain.StatsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.StatsEvent, len(s.events))
	copy(out, s.events)
	return out
}
