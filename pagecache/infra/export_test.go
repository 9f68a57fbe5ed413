package infra

// slot devolve o conteúdo bruto de um slot, live ou não.
func (b *DoubleBuffer) slot(i int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slots[i]
}
