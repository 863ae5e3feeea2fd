package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrap_Defaults(t *testing.T) {
	w := Wrap(httptest.NewRecorder())

	if w.StatusCode() != http.StatusOK {
		t.Errorf("default status = %d, want %d", w.StatusCode(), http.StatusOK)
	}
	if w.BytesWritten() != 0 {
		t.Errorf("default bytes = %d, want 0", w.BytesWritten())
	}
}

func TestWriteHeader_RecordsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusAccepted)

	if w.StatusCode() != http.StatusAccepted {
		t.Errorf("status = %d, want %d", w.StatusCode(), http.StatusAccepted)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("underlying status = %d, want %d", rec.Code, http.StatusAccepted)
	}
}

func TestWriteHeader_FirstWriteWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusBadGateway)
	w.WriteHeader(http.StatusOK)

	// 2回目以降の WriteHeader は無視される
	if w.StatusCode() != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.StatusCode(), http.StatusBadGateway)
	}
}

func TestWrite_CountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	if _, err := w.Write([]byte(`{"status":"PENDING"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := w.BytesWritten(); got != 21 {
		t.Errorf("bytes = %d, want 21", got)
	}
	if rec.Body.String() != `{"status":"PENDING"}`+"\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestWrite_ImplicitHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	if _, err := w.Write([]byte("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if w.StatusCode() != http.StatusOK {
		t.Errorf("status = %d, want implicit 200", w.StatusCode())
	}

	// 本文書き込み後の WriteHeader は効かない
	w.WriteHeader(http.StatusInternalServerError)
	if w.StatusCode() != http.StatusOK {
		t.Errorf("status after late WriteHeader = %d, want 200", w.StatusCode())
	}
}

func TestUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	if w.Unwrap() != rec {
		t.Error("Unwrap should return the underlying writer")
	}
}
