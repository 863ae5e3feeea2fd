package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-a1b2c3")
	if got := FromContext(ctx); got != "req-a1b2c3" {
		t.Errorf("FromContext = %q, want req-a1b2c3", got)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext on empty context = %q, want empty", got)
	}
}

func TestMiddleware_GeneratesID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks", nil))

	if seen == "" {
		t.Fatal("handler saw no request ID")
	}
	// 新規生成分は UUID v4 形式
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated ID %q is not a UUID: %v", seen, err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

func TestMiddleware_PropagatesIncomingID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks", nil)
	req.Header.Set(RequestIDHeader, "upstream-7f3a")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "upstream-7f3a" {
		t.Errorf("handler saw %q, want the incoming ID", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "upstream-7f3a" {
		t.Errorf("response header = %q, want upstream-7f3a", got)
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	ids := make(map[string]bool)
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[FromContext(r.Context())] = true
	}))

	for i := 0; i < 10; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/alerts", nil))
	}

	if len(ids) != 10 {
		t.Errorf("got %d distinct IDs over 10 requests", len(ids))
	}
}
