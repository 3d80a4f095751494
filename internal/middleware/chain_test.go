package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskcal/internal/model"
)

// TestMiddlewareChain_SessionThenRateLimit は
// Session → RateLimit の順でチェーンしたときにリクエストが通ることを検証する。
func TestMiddlewareChain_SessionThenRateLimit(t *testing.T) {
	user := &model.User{ID: "user-chain-test"}
	sessionMW := NewSessionMiddleware(validResolver(t, "valid-session", user))

	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	var capturedUserID string
	handler := sessionMW(rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if capturedUserID != "user-chain-test" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-chain-test")
	}
}

// TestMiddlewareChain_NoSession_Returns401 は
// セッションがない場合にチェーンの先頭で401が返されることを検証する。
func TestMiddlewareChain_NoSession_Returns401(t *testing.T) {
	sessionMW := NewSessionMiddleware(&mockSessionResolver{})

	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	handler := sessionMW(rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
