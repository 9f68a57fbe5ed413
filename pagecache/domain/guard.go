package domain

// RegenerationGuard é uma flag de exclusão mútua não-bloqueante.
//
// A semântica é: TryAcquire nunca espera. Se outra regeneração estiver em
// andamento, retorna ok=false (busy). Ao adquirir, retorna uma função de
// release que deve ser chamada em todo caminho de saída (sucesso ou falha).
type RegenerationGuard interface {
	TryAcquire() (release func(), ok bool)
	Busy() bool
}

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// Aqui é usado para espaçar regenerações (pacer). A implementação de infra
// usa golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}
