package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *Server {
	ds := dataset.New([]models.Record{
		{OrderDate: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), Region: "West", Category: "Tech", Sales: 100, Profit: 20},
		{OrderDate: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), Region: "East", Category: "Tech", Sales: 200, Profit: 50},
	})
	dashboard := services.NewDashboard(ds, insights.DefaultTexts(), testLogger())
	return NewServer(dashboard, session.NewStore(time.Minute), testLogger(), time.Second)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method      string
		path        string
		wantStatus  int
		contentType string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/api/filters", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/dashboard", http.StatusOK, "application/json"},
		{http.MethodGet, "/charts/monthly", http.StatusOK, "image/png"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodGet, "/missing", http.StatusNotFound, ""},
		{http.MethodPost, "/api/dashboard", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}
		})
	}
}

func TestGracefulServer_ShutdownRunsHooks(t *testing.T) {
	cfg := config.ServerConfig{ShutdownTimeout: time.Second}
	gs := NewGracefulServer(&http.Server{}, testLogger(), cfg)

	var ran atomic.Int32
	gs.RegisterShutdownHook("ok", func(context.Context) error {
		ran.Add(1)
		return nil
	})
	hookErr := errors.New("flush failed")
	gs.RegisterShutdownHook("broken", func(context.Context) error {
		ran.Add(1)
		return hookErr
	})

	err := gs.Shutdown(context.Background())
	if !errors.Is(err, hookErr) {
		t.Errorf("Shutdown() error = %v, want %v", err, hookErr)
	}
	if ran.Load() != 2 {
		t.Errorf("hooks run = %d, want 2", ran.Load())
	}
}

func TestGracefulServer_StopsOnContextCancel(t *testing.T) {
	cfg := config.ServerConfig{ShutdownTimeout: time.Second}
	httpServer := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	gs := NewGracefulServer(httpServer, testLogger(), cfg)

	stopped := make(chan struct{})
	gs.RegisterShutdownHook("marker", func(context.Context) error {
		close(stopped)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- gs.ListenAndServe(ctx) }()

	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-stopped:
	default:
		t.Error("shutdown hook was not run")
	}
}
