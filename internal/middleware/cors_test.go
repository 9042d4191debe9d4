package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestCORSMiddleware_Headers はCORSヘッダーが付与されることを検証する。
func TestCORSMiddleware_Headers(t *testing.T) {
	mw := NewCORSMiddleware("http://localhost:5173")
	handler := mw(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want %q", got, "http://localhost:5173")
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want %q", got, "true")
	}
}

// TestCORSMiddleware_Preflight はOPTIONSプリフライトが204で応答され、
// X-Group-Idヘッダーが許可されることを検証する。
func TestCORSMiddleware_Preflight(t *testing.T) {
	mw := NewCORSMiddleware("http://localhost:5173")
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/pins", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if called {
		t.Error("inner handler should not be called for preflight")
	}

	allowHeaders := rec.Header().Get("Access-Control-Allow-Headers")
	if allowHeaders != "Content-Type, X-Group-Id" {
		t.Errorf("Allow-Headers = %q, want %q", allowHeaders, "Content-Type, X-Group-Id")
	}
}
