package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
)

const testCSV = `Order Date,Region,Category,Sales,Profit,Discount
2023-01-05,West,Tech,100,20,0.1
2023-02-10,East,Tech,200,50,0
2023-02-15,West,Office,50,-10,0.2
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RenderTimeout: time.Second},
		Security: config.SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  20,
			AllowedOrigins:  []string{"http://localhost:8084"},
		},
		Session: config.SessionConfig{CookieName: "dashboard_session", TTL: time.Minute},
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds, err := loadDataset(config.DatasetConfig{File: path, LoadTimeout: time.Second}, logger)
	if err != nil {
		t.Fatalf("loadDataset() failed: %v", err)
	}

	cfg := testConfig()
	dashboard := services.NewDashboard(ds, insights.DefaultTexts(), logger)
	srv := server.NewServer(dashboard, session.NewStore(cfg.Session.TTL), logger, cfg.Server.RenderTimeout)
	return newHandler(srv, cfg, middleware.NewRateLimiter(cfg.Security), logger)
}

func TestHandler_Middleware(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "dashboard_session" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie")
	}
}

func TestHandler_SessionDrivesCharts(t *testing.T) {
	handler := newTestHandler(t)

	// The first page load issues the cookie the later requests reuse.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, `/sse/dashboard?datastar=`+
		`%7B%22regions%22%3A%5B%22East%22%5D%2C%22categories%22%3A%5B%22Tech%22%5D%7D`, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "$200") {
		t.Fatalf("expected East revenue in the stream, got:\n%s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "/charts/region?v=1") {
		t.Error("page should reference the session's chart version")
	}
	if !strings.Contains(body, "$200") {
		t.Error("page should render the session's selection")
	}
}

func TestLoadDataset_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "Order Date,Region,Category,Sales,Profit,Discount\n2023-01-05,West,Tech,lots,20,0.1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadDataset(config.DatasetConfig{File: path, LoadTimeout: time.Second}, logger)
	var parseErr *dataset.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *dataset.ParseError, got %T", err)
	}

	var buf bytes.Buffer
	logDatasetError(slog.New(slog.NewTextHandler(&buf, nil)), err)
	if !strings.Contains(buf.String(), "line=2") || !strings.Contains(buf.String(), "column=Sales") {
		t.Errorf("log should locate the bad cell, got %q", buf.String())
	}

	_, err = loadDataset(config.DatasetConfig{File: filepath.Join(t.TempDir(), "none.csv"), LoadTimeout: time.Second}, logger)
	var loadErr *dataset.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *dataset.LoadError, got %T", err)
	}
}
