package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagegen-server/llm"
	"pagegen-server/pagecache"
	"pagegen-server/pagecache/application"
	"pagegen-server/pagecache/domain"
	"pagegen-server/pagecache/infra"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.logLevel, cfg.logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pagegen stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) (err error) {
	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var stats domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				err = multierror.Append(err, fmt.Errorf("redis close: %w", cerr))
			}
		}()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, perr := rdb.Ping(pingCtx).Result()
		cancel()
		if perr != nil {
			return fmt.Errorf("redis stats ping error: %w", perr)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
		)
	}

	var pacer domain.Limiter
	if cfg.regenMinInterval > 0 {
		pacer = infra.NewIntervalPacer(cfg.regenMinInterval)
	}

	svc := &application.RefreshService{
		Buffer:     infra.NewDoubleBuffer(),
		Guard:      infra.NewAtomicGuard(),
		Generator:  gen,
		Pacer:      pacer,
		Stats:      stats,
		Logger:     logger.Named("refresh"),
		StaleAfter: cfg.staleAfterFailures,
	}

	// Sem conteúdo inicial não há o que servir: falha antes de abrir a porta.
	if err := svc.Bootstrap(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.listenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.listenAddr, err)
	}

	srv := &http.Server{
		Handler: pagecache.NewMux(pagecache.Options{
			Service:   svc,
			Logger:    logger.Named("http"),
			MarkStale: cfg.markStale,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	logger.Info("server running",
		zap.String("addr", ln.Addr().String()),
		zap.String("backend", cfg.backend),
		zap.Duration("regenMinInterval", cfg.regenMinInterval),
		zap.Int("staleAfterFailures", cfg.staleAfterFailures),
		zap.Bool("statsEnabled", cfg.statsEnabled))

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	// regeneração em andamento termina sozinha; só esperamos até o timeout.
	if err := svc.Shutdown(shutdownCtx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("waiting regeneration: %w", err))
	}
	logger.Info("server stopped")
	return errs
}

func newGenerator(ctx context.Context, cfg config, logger *zap.Logger) (domain.Generator, error) {
	genLog := logger.Named("generator")
	switch cfg.backend {
	case "bedrock":
		g, err := llm.NewBedrockGenerator(ctx, cfg.awsRegion, cfg.bedrockModelID)
		if err != nil {
			return nil, err
		}
		g.Timeout = cfg.generatorTimeout
		g.Logger = genLog
		return g, nil
	case "messages":
		return llm.NewMessagesGenerator(llm.MessagesOptions{
			URL:       cfg.messagesURL,
			APIKey:    cfg.messagesAPIKey,
			Model:     cfg.messagesModel,
			MaxTokens: cfg.messagesMaxTokens,
			Timeout:   cfg.generatorTimeout,
			RetryMax:  cfg.retryMax,
			Logger:    genLog,
		}), nil
	default:
		return &llm.FixtureGenerator{Delay: 3 * time.Second, Logger: genLog}, nil
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
