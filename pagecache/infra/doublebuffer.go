package infra

import (
	"sync"
	"time"

	"pagegen-server/pagecache/domain"
)

// DoubleBuffer implementa domain.ContentBuffer com dois slots fixos.
//
// Leitores usam RLock e não bloqueiam uns aos outros. O publicador segura o
// Lock só pelo tempo de gravar o header da string e virar o índice.
type DoubleBuffer struct {
	mu          sync.RWMutex
	slots       [2]string
	live        int
	version     uint64
	publishedAt time.Time
}

func NewDoubleBuffer() *DoubleBuffer {
	return &DoubleBuffer{}
}

// Seed inicializa o estado de startup: slot 0 com o conteúdo, slot 1 vazio, live=0.
func (b *DoubleBuffer) Seed(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.slots = [2]string{text, ""}
	b.live = 0
	b.version = 0
	b.publishedAt = time.Now()
}

func (b *DoubleBuffer) ReadLive() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slots[b.live]
}

// PublishAndSwap grava no slot que não está live e então vira o índice.
// O índice de destino é lido aqui, sob o lock de escrita, e não no trigger.
func (b *DoubleBuffer) PublishAndSwap(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := 1 - b.live
	b.slots[next] = text
	b.live = next
	b.version++
	b.publishedAt = time.Now()
}

func (b *DoubleBuffer) Snapshot() domain.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.Snapshot{
		Content:     b.slots[b.live],
		Live:        b.live,
		Version:     b.version,
		PublishedAt: b.publishedAt,
	}
}
