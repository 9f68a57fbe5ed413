package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagegen-server/llm"
	"pagegen-server/pagecache"
	"pagegen-server/pagecache/application"
	"pagegen-server/pagecache/infra"

	"go.uber.org/zap"
)

func main() {
	// Exemplo: sem LLM, com gerador de fixtures lento para ver o buffer duplo em ação.
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stats := infra.NewMemoryStatsStore(infra.WithKeepEvents(50))
	svc := &application.RefreshService{
		Buffer:     infra.NewDoubleBuffer(),
		Guard:      infra.NewAtomicGuard(),
		Generator:  &llm.FixtureGenerator{Delay: 2 * time.Second, Logger: logger},
		Pacer:      infra.NewIntervalPacer(5 * time.Second),
		Stats:      stats,
		Logger:     logger,
		StaleAfter: 3,
	}
	if err := svc.Bootstrap(ctx); err != nil {
		logger.Fatal("bootstrap failed", zap.Error(err))
	}

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           pagecache.NewMux(pagecache.Options{Service: svc, Logger: logger, MarkStale: true}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = svc.Shutdown(shutdownCtx)
		total := stats.Total()
		logger.Info("regeneration stats",
			zap.Int64("success", total.Success),
			zap.Int64("failure", total.Failure),
			zap.Int64("skipped", svc.Skipped()),
			zap.Duration("meanDuration", stats.MeanDuration()))
	}()

	logger.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	<-stopped
}
