package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pagegen-server/pagecache/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// freeAddr reserva uma porta local e a libera em seguida.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func messagesConfig(listenAddr, upstreamURL string) config {
	return config{
		listenAddr:        listenAddr,
		logLevel:          "info",
		backend:           "messages",
		messagesURL:       upstreamURL,
		messagesAPIKey:    "k",
		messagesModel:     "test-model",
		messagesMaxTokens: 100,
		retryMax:          0,
		shutdownTimeout:   2 * time.Second,
	}
}

func upstream(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_StartupGenerationFailureDoesNotBind(t *testing.T) {
	up := upstream(t, http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	addr := freeAddr(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, messagesConfig(addr, up.URL), zap.NewNop())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrStartupGeneration)

	// a porta nunca foi aberta.
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err, "expected port to still be free")
	require.NoError(t, ln.Close())
}

func TestRun_BindFailureIsFatal(t *testing.T) {
	up := upstream(t, http.StatusOK, `{"content":[{"type":"text","text":"<!DOCTYPE html></html>"}]}`)

	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer held.Close()
	addr := held.Addr().String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = run(ctx, messagesConfig(addr, up.URL), zap.NewNop())
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "bind "+addr), "got %v", err)
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	up := upstream(t, http.StatusOK, `{"content":[{"type":"text","text":"hi <!DOCTYPE html><h1>ok</h1></html> bye"}]}`)
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, messagesConfig(addr, up.URL), zap.NewNop()) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)
	require.Equal(t, "<!DOCTYPE html><h1>ok</h1></html>", body)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting run to return")
	}
}
