// Package pagecache fornece o adapter HTTP (net/http) para a página gerada
// por LLM servida em modo stale-while-revalidate.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (bootstrap, serve, trigger/regenerate) sem net/http
//   - infra: implementações concretas (buffer duplo, guard atômico, pacer, stats)
//   - pagecache (este pacote): handler HTTP + wiring da rota única
//
// Fluxo por request:
//
//   1) Lê o buffer live (nunca espera o gerador)
//   2) Tenta adquirir o guard; se ocupado, pula o ciclo
//   3) Se adquiriu, gera em background e publica no slot que não está live
//   4) Responde 200 text/html com o conteúdo lido no passo 1
//
// Variáveis de ambiente do binário (cmd/pagegen) controlam o comportamento,
// como GENERATOR_BACKEND, REGEN_MIN_INTERVAL e STATS_ENABLED.
package pagecache
