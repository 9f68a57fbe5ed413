// Package domain define contratos e tipos de domínio para o cache de página
// stale-while-revalidate.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a orquestração
// (application) dos detalhes de infraestrutura (buffer, guard, stats, LLM).
package domain
