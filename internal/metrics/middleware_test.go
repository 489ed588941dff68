package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := wrapResponseWriter(w)

	if rw.status != http.StatusOK {
		t.Errorf("Expected initial status %d, got %d", http.StatusOK, rw.status)
	}

	rw.WriteHeader(http.StatusNotFound)
	if rw.status != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rw.status)
	}

	// Double WriteHeader should be ignored
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.status != http.StatusNotFound {
		t.Errorf("Expected status to remain %d, got %d", http.StatusNotFound, rw.status)
	}
}

func TestResponseWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rw := wrapResponseWriter(w)

	if _, err := rw.Write([]byte("test")); err != nil {
		t.Errorf("Write failed: %v", err)
	}

	if rw.status != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rw.status)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	if got := counterValue(t, m.APIRequestsTotal.WithLabelValues("POST", "/api/v1/campaigns", "201")); got != 1 {
		t.Errorf("APIRequestsTotal = %v, want 1", got)
	}
}

func TestHTTPMiddleware_ErrorsCategorized(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/merge", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, m.APIErrorsTotal.WithLabelValues("conflict")); got != 1 {
		t.Errorf("APIErrorsTotal{conflict} = %v, want 1", got)
	}
}

func TestNormalizePathUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/550e8400-e29b-41d4-a716-446655440000", nil)
	if got := normalizePath(req); got != "/api/v1/campaigns/{id}" {
		t.Errorf("normalizePath = %q, want id placeholder", got)
	}
}

func TestIsUUID(t *testing.T) {
	if !isUUID("550e8400-e29b-41d4-a716-446655440000") {
		t.Error("valid UUID not recognized")
	}
	if isUUID("not-a-uuid") {
		t.Error("junk recognized as UUID")
	}
	if isUUID("550e8400e29b41d4a716446655440000") {
		t.Error("undashed hex recognized as UUID")
	}
}
