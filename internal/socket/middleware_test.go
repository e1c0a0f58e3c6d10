package socket

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("{}")) //nolint:errcheck // test handler
}

func TestHeadersMiddleware(t *testing.T) {
	t.Parallel()

	mdlw := HeadersMiddleware(http.Header{"Content-Type": []string{"application/json"}})
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	wrapped := mdlw(http.HandlerFunc(testHandler))
	wrapped.ServeHTTP(w, req)

	gotHeader := w.Header().Get("Content-Type")
	if gotHeader != "application/json" {
		t.Errorf("w.Header().Get(\"Content-Type\") = %s (wanted %s)", gotHeader, "application/json")
	}
}

func TestLoggerMiddleware(t *testing.T) {
	t.Parallel()

	var logged []string
	logf := func(f string, v ...any) {
		logged = append(logged, f)
	}

	mdlw := LoggerMiddleware("rpc", logf)
	req := httptest.NewRequest("GET", "/rpc/call", nil)
	w := httptest.NewRecorder()

	wrapped := mdlw(http.HandlerFunc(testHandler))
	wrapped.ServeHTTP(w, req)

	if len(logged) != 1 {
		t.Fatalf("len(logged) = %d, want 1", len(logged))
	}
}
