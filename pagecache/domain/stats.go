package domain

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// StatsEvent representa o resultado de uma regeneração que chegou a chamar o
// gerador. Triggers pulados (busy/pacer) não viram evento: são contados em
// memória pelo serviço, fora do caminho da request.
type StatsEvent struct {
	Outcome  Outcome
	Duration time.Duration
	// Bytes é o tamanho do conteúdo publicado (0 em falha).
	Bytes int

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de regeneração.
//
// Implementações podem armazenar em Redis, memória, etc.
// O serviço trata erro como best-effort (nunca afeta o buffer).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
