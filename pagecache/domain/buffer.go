package domain

import "time"

// Snapshot é uma visão consistente do buffer duplo em um instante.
type Snapshot struct {
	Content string
	// Live é o índice (0 ou 1) do slot servido.
	Live int
	// Version conta publicações bem-sucedidas. O seed inicial é a versão 0.
	Version     uint64
	PublishedAt time.Time
}

// ContentBuffer guarda dois slots de conteúdo e o índice do slot "live".
//
// ReadLive nunca observa uma escrita parcial: devolve o slot antigo inteiro
// ou o novo inteiro. PublishAndSwap é o único mutador depois do Seed.
type ContentBuffer interface {
	Seed(text string)
	ReadLive() string
	PublishAndSwap(text string)
	Snapshot() Snapshot
}
