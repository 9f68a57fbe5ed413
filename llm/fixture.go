package llm

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// FixtureGenerator devolve páginas fixas em rodízio, com latência artificial.
// Sem Pages, monta uma página simples por categoria sorteada.
type FixtureGenerator struct {
	Pages   []string
	Delay   time.Duration
	Prompts *PromptBuilder
	Logger  *zap.Logger

	calls atomic.Int64
}

func (g *FixtureGenerator) Generate(ctx context.Context) (string, error) {
	n := g.calls.Inc()

	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}

	if len(g.Pages) > 0 {
		return g.Pages[int(n-1)%len(g.Pages)], nil
	}

	prompts := g.Prompts
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	category, _ := prompts.Build()
	logger(g.Logger).Info("fixture page generated", zap.String("category", category), zap.Int64("call", n))

	title := html.EscapeString(category)
	return fmt.Sprintf("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>%s</title></head>"+
		"<body><h1>%s</h1><p>generation #%d at %s</p></body></html>",
		title, title, n, time.Now().UTC().Format(time.RFC3339)), nil
}

// Calls é o número de chamadas a Generate.
func (g *FixtureGenerator) Calls() int64 { return g.calls.Load() }
