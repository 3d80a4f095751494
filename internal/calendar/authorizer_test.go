package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/hitoshi/taskcal/internal/model"
)

// rejectingTokenServer はトークンリフレッシュを拒否するエンドポイントを立てる。
func rejectingTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestAuthorizerWithTokenEndpoint はトークンエンドポイントを差し替えたAuthorizerを返す。
func newTestAuthorizerWithTokenEndpoint(metrics Metrics, tokenURL string) *Authorizer {
	a := newTestAuthorizer(metrics)
	a.conf.Endpoint = oauth2.Endpoint{
		AuthURL:  tokenURL + "/auth",
		TokenURL: tokenURL + "/token",
	}
	return a
}

func TestBeginAuthorization_ContainsStateAndScope(t *testing.T) {
	a := newTestAuthorizer(nil)

	url := a.BeginAuthorization("state-xyz")

	if !strings.Contains(url, "state=state-xyz") {
		t.Errorf("auth URL should contain state parameter: %s", url)
	}
	if !strings.Contains(url, "calendar.readonly") {
		t.Errorf("auth URL should request readonly scope: %s", url)
	}
	if !strings.Contains(url, "access_type=offline") {
		t.Errorf("auth URL should request offline access: %s", url)
	}
	if !strings.Contains(url, "client_id=test-client-id") {
		t.Errorf("auth URL should contain client ID: %s", url)
	}
}

func TestStatus_NotAuthorized(t *testing.T) {
	a := newTestAuthorizer(nil)

	user := &model.User{ID: "user-1"}
	if got := a.Status(user); got != StatusNotAuthorized {
		t.Errorf("status = %q, want %q", got, StatusNotAuthorized)
	}
}

func TestStatus_Authorized_WithValidToken(t *testing.T) {
	a := newTestAuthorizer(nil)

	user := &model.User{
		ID:                "user-1",
		GoogleAccessToken: "access-token",
		GoogleTokenExpiry: time.Now().Add(time.Hour),
	}
	if got := a.Status(user); got != StatusAuthorized {
		t.Errorf("status = %q, want %q", got, StatusAuthorized)
	}
}

func TestStatus_Authorized_ExpiredButRefreshable(t *testing.T) {
	a := newTestAuthorizer(nil)

	// 期限切れでもリフレッシュトークンがあればauthorized扱い
	user := &model.User{
		ID:                 "user-1",
		GoogleAccessToken:  "stale-token",
		GoogleRefreshToken: "refresh-token",
		GoogleTokenExpiry:  time.Now().Add(-time.Hour),
	}
	if got := a.Status(user); got != StatusAuthorized {
		t.Errorf("status = %q, want %q", got, StatusAuthorized)
	}
}

func TestStatus_Expired_WithoutRefreshToken(t *testing.T) {
	a := newTestAuthorizer(nil)

	user := &model.User{
		ID:                "user-1",
		GoogleAccessToken: "stale-token",
		GoogleTokenExpiry: time.Now().Add(-time.Hour),
	}
	if got := a.Status(user); got != StatusExpired {
		t.Errorf("status = %q, want %q", got, StatusExpired)
	}
}

func TestEnsureFreshToken_NoToken_ReturnsNil(t *testing.T) {
	a := newTestAuthorizer(nil)

	user := &model.User{ID: "user-1"}
	if tok := a.EnsureFreshToken(context.Background(), user); tok != nil {
		t.Errorf("expected nil token, got %+v", tok)
	}
}

func TestEnsureFreshToken_ValidStoredToken_ReturnsIt(t *testing.T) {
	a := newTestAuthorizer(nil)

	user := &model.User{
		ID:                "user-1",
		GoogleAccessToken: "valid-token",
		GoogleTokenExpiry: time.Now().Add(time.Hour),
	}

	tok := a.EnsureFreshToken(context.Background(), user)
	if tok == nil {
		t.Fatal("expected non-nil token")
	}
	if tok.AccessToken != "valid-token" {
		t.Errorf("AccessToken = %q, want %q", tok.AccessToken, "valid-token")
	}
}

func TestEnsureFreshToken_ExpiredWithoutRefresh_ReturnsNil(t *testing.T) {
	a := newTestAuthorizer(nil)

	user := &model.User{
		ID:                "user-1",
		GoogleAccessToken: "stale-token",
		GoogleTokenExpiry: time.Now().Add(-time.Hour),
	}

	// リフレッシュ手段がない場合はnilを返す（エラーにしない）
	if tok := a.EnsureFreshToken(context.Background(), user); tok != nil {
		t.Errorf("expected nil token, got %+v", tok)
	}
}

func TestEnsureFreshToken_RefreshRejected_ReturnsNil(t *testing.T) {
	srv := rejectingTokenServer(t)
	metrics := &spyCalendarMetrics{}
	a := newTestAuthorizerWithTokenEndpoint(metrics, srv.URL)

	user := &model.User{
		ID:                 "user-1",
		GoogleAccessToken:  "stale-token",
		GoogleRefreshToken: "refresh-token",
		GoogleTokenExpiry:  time.Now().Add(-time.Hour),
	}

	// リフレッシュ試行が拒否されてもnilを返すだけで、エラーにもpanicにもしない
	if tok := a.EnsureFreshToken(context.Background(), user); tok != nil {
		t.Errorf("expected nil token, got %+v", tok)
	}
	if metrics.refreshFail != 1 {
		t.Errorf("refreshFail = %d, want 1", metrics.refreshFail)
	}
	if metrics.refreshSuccess != 0 {
		t.Errorf("refreshSuccess = %d, want 0", metrics.refreshSuccess)
	}
}
