package worker

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHealthServer() *HealthServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHealthServer(":0", logger)
}

func TestHealthServer_Liveness(t *testing.T) {
	server := newTestHealthServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.handleLiveness(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", body.Status)
	}
}

func TestHealthServer_Readiness_NotReady(t *testing.T) {
	server := newTestHealthServer()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReadiness(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 before SetReady, got %d", rec.Code)
	}

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Status != "not ready" {
		t.Errorf("Expected status 'not ready', got '%s'", body.Status)
	}
}

func TestHealthServer_Readiness_Ready(t *testing.T) {
	server := newTestHealthServer()
	server.SetReady(true)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReadiness(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 after SetReady, got %d", rec.Code)
	}
}

func TestHealthServer_Readiness_Transition(t *testing.T) {
	server := newTestHealthServer()

	check := func(wantCode int) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		server.handleReadiness(rec, req)
		if rec.Code != wantCode {
			t.Errorf("Expected status %d, got %d", wantCode, rec.Code)
		}
	}

	check(http.StatusServiceUnavailable)
	server.SetReady(true)
	check(http.StatusOK)

	// SetReady(false) is called before shutdown to drain traffic
	server.SetReady(false)
	check(http.StatusServiceUnavailable)
}

func TestNewHealthServer(t *testing.T) {
	server := newTestHealthServer()

	if server == nil {
		t.Fatal("NewHealthServer returned nil")
	}

	if server.isReady.Load() {
		t.Error("Expected server to start as not ready")
	}
}
