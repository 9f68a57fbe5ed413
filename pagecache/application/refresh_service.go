package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pagegen-server/pagecache/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	errEmptyContent = errors.New("generator returned empty content")
	errClosing      = errors.New("refresh service is shutting down")
)

// RefreshService concentra a regra stale-while-revalidate, sem saber nada
// sobre HTTP.
//
// Buffer, Guard e Generator são obrigatórios. Os demais campos são opcionais.
// Use sempre por ponteiro: o serviço mantém contadores e o WaitGroup das
// regenerações em background.
type RefreshService struct {
	Buffer    domain.ContentBuffer
	Guard     domain.RegenerationGuard
	Generator domain.Generator

	// Pacer, se definido, espaça regenerações. nil = sem espaçamento.
	Pacer domain.Limiter
	Stats domain.StatsStore

	Logger  *zap.Logger
	Tracer  trace.Tracer
	Markers Markers

	// StaleAfter: número de falhas seguidas a partir do qual Degraded() é true.
	// 0 desliga.
	StaleAfter int

	// StatsTimeout limita o Record no StatsStore. Padrão 2s.
	StatsTimeout time.Duration

	// mu ordena wg.Add (Trigger) contra o fechamento em Shutdown.
	mu       sync.RWMutex
	closing  bool
	wg       sync.WaitGroup
	failures atomic.Int64
	skipped  atomic.Int64
}

// Bootstrap faz a geração síncrona de startup e semeia o buffer.
// É o único ponto em que falha do gerador sobe para quem chamou.
func (s *RefreshService) Bootstrap(ctx context.Context) error {
	content, err := s.generate(ctx, "bootstrap")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStartupGeneration, err)
	}
	s.Buffer.Seed(content)
	s.log().Info("initial content ready", zap.Int("bytes", len(content)))
	return nil
}

// Serve devolve o conteúdo live e, depois de ler, tenta disparar uma
// regeneração em background. Nunca falha e nunca espera o gerador.
func (s *RefreshService) Serve() string {
	content := s.Buffer.ReadLive()
	s.Trigger()
	return content
}

// Trigger tenta disparar uma regeneração em background.
// Retorna true se uma goroutine foi lançada. Busy não é erro: só pula o ciclo.
func (s *RefreshService) Trigger() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closing {
		s.skip(errClosing)
		return false
	}
	release, err := s.acquire()
	if err != nil {
		s.skip(err)
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer release()
		// pânico do gerador já vira erro em generate; aqui sobra o resto
		// (buffer, stats store).
		defer func() {
			if r := recover(); r != nil {
				s.failures.Inc()
				s.log().Error("regeneration task panicked",
					zap.Any("panic", r),
					zap.Stack("stack"))
			}
		}()

		// Sem cancelamento: a request que disparou já retornou.
		_ = s.regenerate(context.Background())
	}()
	return true
}

// RegenerateNow roda uma regeneração de forma síncrona, respeitando o guard
// e o pacer. Retorna domain.ErrBusy ou domain.ErrPaced quando pula.
func (s *RefreshService) RegenerateNow(ctx context.Context) error {
	release, err := s.acquire()
	if err != nil {
		s.skipped.Inc()
		return err
	}
	defer release()
	return s.regenerate(ctx)
}

// Shutdown para de aceitar triggers e espera as regenerações em andamento.
// Triggers depois disso são pulados.
func (s *RefreshService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	return s.Wait(ctx)
}

// Wait bloqueia até todas as regenerações em background terminarem ou o ctx
// encerrar. Não impede novos triggers; com requests ainda chegando use Shutdown.
func (s *RefreshService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Degraded indica que as últimas StaleAfter regenerações falharam e o
// conteúdo servido está envelhecendo.
func (s *RefreshService) Degraded() bool {
	return s.StaleAfter > 0 && s.failures.Load() >= int64(s.StaleAfter)
}

// ConsecutiveFailures é o número de falhas desde o último sucesso.
func (s *RefreshService) ConsecutiveFailures() int64 { return s.failures.Load() }

// Skipped é o total de triggers pulados (busy, pacer ou shutdown).
func (s *RefreshService) Skipped() int64 { return s.skipped.Load() }

func (s *RefreshService) skip(err error) {
	s.skipped.Inc()
	skippedTriggers.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("reason", skipReason(err))))
	s.log().Debug("regeneration skipped", zap.Error(err))
}

func (s *RefreshService) acquire() (func(), error) {
	release, ok := s.Guard.TryAcquire()
	if !ok {
		return nil, domain.ErrBusy
	}
	if s.Pacer != nil && !s.Pacer.Allow() {
		release()
		return nil, domain.ErrPaced
	}
	return release, nil
}

// regenerate assume que o guard já está seguro por quem chamou.
func (s *RefreshService) regenerate(ctx context.Context) error {
	start := time.Now()
	content, err := s.generate(ctx, "refresh")
	elapsed := time.Since(start)

	if err != nil {
		n := s.failures.Inc()
		fields := []zap.Field{zap.Error(err), zap.Int64("consecutiveFailures", n)}
		if s.Degraded() {
			s.log().Warn("regeneration failed, serving stale content", fields...)
		} else {
			s.log().Error("regeneration failed", fields...)
		}
		s.record(domain.StatsEvent{Outcome: domain.OutcomeFailure, Duration: elapsed, At: start})
		return err
	}

	s.Buffer.PublishAndSwap(content)
	s.failures.Store(0)
	snap := s.Buffer.Snapshot()
	s.log().Info("content published",
		zap.Int("slot", snap.Live),
		zap.Uint64("version", snap.Version),
		zap.Int("bytes", len(content)))
	s.record(domain.StatsEvent{Outcome: domain.OutcomeSuccess, Duration: elapsed, Bytes: len(content), At: start})
	return nil
}

// generate chama o gerador e aplica o Sanitize. Conteúdo vazio conta como falha:
// o slot live nunca pode apontar para uma página vazia.
func (s *RefreshService) generate(ctx context.Context, phase string) (string, error) {
	ctx, span := s.tracer().Start(ctx, "pagecache.regenerate",
		trace.WithAttributes(attribute.String("phase", phase)))
	defer span.End()

	start := time.Now()
	s.log().Info("generation started", zap.String("phase", phase))

	raw, err := s.callGenerator(ctx)
	if err == nil {
		raw = Sanitize(raw, s.markers())
		if raw == "" {
			err = errEmptyContent
		}
	}
	elapsed := time.Since(start)

	outcome := domain.OutcomeSuccess
	if err != nil {
		outcome = domain.OutcomeFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs := metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", string(outcome)))
	regenerations.Add(ctx, 1, attrs)
	generationDuration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		s.log().Info("generation ended",
			zap.String("phase", phase),
			zap.String("outcome", string(outcome)),
			zap.Duration("duration", elapsed))
		return "", errors.Wrapf(err, "%s generation", phase)
	}

	s.log().Info("generation ended",
		zap.String("phase", phase),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", elapsed),
		zap.Int("bytes", len(raw)))
	return raw, nil
}

// callGenerator converte pânico do gerador em erro, para que ele siga o mesmo
// caminho de uma falha comum (log, stats, métrica, span).
func (s *RefreshService) callGenerator(ctx context.Context) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log().Error("regeneration panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
			out, err = "", errors.Errorf("generator panic: %v", r)
		}
	}()
	return s.Generator.Generate(ctx)
}

func (s *RefreshService) record(ev domain.StatsEvent) {
	if s.Stats == nil {
		return
	}
	timeout := s.StatsTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Stats.Record(ctx, ev); err != nil {
		s.log().Warn("stats record failed", zap.Error(err))
	}
}

func (s *RefreshService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *RefreshService) tracer() trace.Tracer {
	if s.Tracer == nil {
		return otel.Tracer(instrumentationName)
	}
	return s.Tracer
}

func (s *RefreshService) markers() Markers {
	if s.Markers == (Markers{}) {
		return DefaultMarkers
	}
	return s.Markers
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPaced):
		return "paced"
	case errors.Is(err, errClosing):
		return "closing"
	}
	return "busy"
}
