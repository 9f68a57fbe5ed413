// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - DoubleBuffer: dois slots de conteúdo com troca atômica do slot live
//   - AtomicGuard: try-lock via compare-and-swap (go.uber.org/atomic)
//   - IntervalPacer: espaçamento mínimo entre regenerações usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: contadores de regeneração
package infra
