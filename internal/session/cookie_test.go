package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestCookieManager(secure bool) *CookieManager {
	return NewCookieManager(NewCodec("test-secret"), CookieConfig{
		Secure: secure,
		MaxAge: 604800,
	})
}

// TestCookieManager_Issue_SetsSecureAttributes は発行されるCookieの
// セキュリティ属性を検証する。
func TestCookieManager_Issue_SetsSecureAttributes(t *testing.T) {
	m := newTestCookieManager(true)
	w := httptest.NewRecorder()

	if err := m.Issue(w, "user-1", "test@example.com"); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}

	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("Name = %q, want %q", c.Name, CookieName)
	}
	if !c.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if !c.Secure {
		t.Error("cookie should be Secure")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want %v", c.SameSite, http.SameSiteStrictMode)
	}
	if c.MaxAge != 604800 {
		t.Errorf("MaxAge = %d, want 604800", c.MaxAge)
	}
	if c.Path != "/" {
		t.Errorf("Path = %q, want %q", c.Path, "/")
	}
}

// TestCookieManager_IssueThenRead は発行したCookieが読み取れることを検証する。
func TestCookieManager_IssueThenRead(t *testing.T) {
	m := newTestCookieManager(false)
	w := httptest.NewRecorder()

	if err := m.Issue(w, "user-1", "test@example.com"); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}

	payload, err := m.Read(req)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if payload.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", payload.UserID, "user-1")
	}
	if payload.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", payload.Email, "test@example.com")
	}
	if payload.ExpiresAt.Before(time.Now()) {
		t.Error("ExpiresAt should be in the future")
	}
}

// TestCookieManager_Read_NoCookie はCookieなしのリクエストがエラーになることを検証する。
func TestCookieManager_Read_NoCookie(t *testing.T) {
	m := newTestCookieManager(false)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	if _, err := m.Read(req); err == nil {
		t.Fatal("expected error for request without cookie, got nil")
	}
}

// TestCookieManager_Clear は空値・Max-Age=0での上書きを検証する。
func TestCookieManager_Clear(t *testing.T) {
	m := newTestCookieManager(false)
	w := httptest.NewRecorder()

	m.Clear(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}

	c := cookies[0]
	if c.Value != "" {
		t.Errorf("Value = %q, want empty", c.Value)
	}
	if c.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1 (即時失効)", c.MaxAge)
	}
	if !c.HttpOnly {
		t.Error("cleared cookie should remain HttpOnly")
	}
}
