package domain

import (
	"context"
	"errors"
	"fmt"
)

// Generator é o colaborador externo que produz uma nova página.
//
// Latência na casa dos segundos e fora do nosso controle. Timeout e retry,
// se existirem, fazem parte do contrato da implementação.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// GeneratorFunc adapta uma função comum para Generator.
type GeneratorFunc func(ctx context.Context) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context) (string, error) { return f(ctx) }

var (
	// ErrStartupGeneration: a geração síncrona de startup falhou. Fatal.
	ErrStartupGeneration = errors.New("startup generation failed")
	// ErrBusy: outra regeneração já está em andamento. Não é erro de verdade,
	// a tentativa é simplesmente pulada.
	ErrBusy = errors.New("regeneration already in progress")
	// ErrPaced: o pacer recusou a regeneração neste ciclo.
	ErrPaced = errors.New("regeneration paced")
)

// GenerationFailure é a falha tipada de um backend de geração.
type GenerationFailure struct {
	Backend string
	Reason  string
	Err     error
}

func (e *GenerationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Reason)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }
