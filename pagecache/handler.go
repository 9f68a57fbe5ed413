package pagecache

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContentService é o mínimo que o handler precisa do application.RefreshService.
type ContentService interface {
	Serve() string
	Degraded() bool
}

type Options struct {
	Service ContentService
	Logger  *zap.Logger
	// RequestIDHeader é lido da request e ecoado na resposta. Padrão X-Request-Id.
	RequestIDHeader string
	// MarkStale adiciona X-Content-Stale: true quando o serviço está degradado.
	MarkStale bool
}

// Handler serve o conteúdo live. Nunca falha depois do bootstrap.
func Handler(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequestIDHeader == "" {
		opts.RequestIDHeader = "X-Request-Id"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(opts.RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		log := opts.Logger.With(zap.String("requestId", reqID))
		log.Info("handling request", zap.String("method", r.Method), zap.String("path", r.URL.Path))

		body := opts.Service.Serve()

		h := w.Header()
		h.Set("Content-Type", "text/html; charset=utf-8")
		h.Set(opts.RequestIDHeader, reqID)
		if opts.MarkStale && opts.Service.Degraded() {
			h.Set("X-Content-Stale", "true")
		}
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = io.WriteString(w, body)
		}

		log.Info("finished handling request",
			zap.Duration("requestTime", time.Since(start)),
			zap.Int("bytes", len(body)))
	})
}

// NewMux registra a rota única GET / (HEAD incluso pelo ServeMux).
// Qualquer outro path responde 404 e outros métodos 405.
func NewMux(opts Options) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", Handler(opts))
	return mux
}
