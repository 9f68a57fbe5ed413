package pagecache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeService struct {
	body     string
	degraded bool
	calls    int
}

func (f *fakeService) Serve() string {
	f.calls++
	return f.body
}

func (f *fakeService) Degraded() bool { return f.degraded }

func TestHandler_ServesLiveContentAsHTML(t *testing.T) {
	svc := &fakeService{body: "<!DOCTYPE html><h1>hi</h1></html>"}
	mux := NewMux(Options{Service: svc})

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	require.Equal(t, svc.body, w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-Id"))
	require.Empty(t, w.Header().Get("X-Content-Stale"))
	require.Equal(t, 1, svc.calls)
}

func TestHandler_EchoesRequestID(t *testing.T) {
	mux := NewMux(Options{Service: &fakeService{body: "x"}})

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestHandler_MarksStaleWhenDegraded(t *testing.T) {
	svc := &fakeService{body: "x", degraded: true}

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w := httptest.NewRecorder()
	NewMux(Options{Service: svc, MarkStale: true}).ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "true", w.Header().Get("X-Content-Stale"))

	// sem MarkStale o header não aparece.
	w = httptest.NewRecorder()
	NewMux(Options{Service: svc}).ServeHTTP(w, r)
	require.Empty(t, w.Header().Get("X-Content-Stale"))
}

func TestHandler_OnlyRootRoute(t *testing.T) {
	svc := &fakeService{body: "x"}
	mux := NewMux(Options{Service: svc})

	r := httptest.NewRequest(http.MethodGet, "http://example/other", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	require.Equal(t, http.StatusNotFound, w.Code)

	r = httptest.NewRequest(http.MethodPost, "http://example/", strings.NewReader("ignored"))
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	require.Equal(t, 0, svc.calls, "no trigger for rejected requests")
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	svc := &fakeService{body: "<!DOCTYPE html></html>"}
	srv := httptest.NewServer(NewMux(Options{Service: svc}))
	defer srv.Close()

	resp, err := http.Head(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body)
}
