// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskcal/internal/middleware"
	"github.com/hitoshi/taskcal/internal/model"
)

// sessionExchangeHeader は外部プロバイダーのセッションIDを受け取るヘッダー名。
const sessionExchangeHeader = "X-Session-ID"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// ExchangeSession は外部プロバイダーのセッションIDをローカルセッションに交換する。
	ExchangeSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error)
	// Logout はセッションを破棄する。冪等。
	Logout(ctx context.Context, token string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はセッション交換とログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// exchangeSessionRequest はセッション交換リクエストのボディ。
// ヘッダーでの指定を優先し、ボディはフォールバックとして受け付ける。
type exchangeSessionRequest struct {
	SessionID string `json:"session_id"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// sessionResponse はセッション交換成功時のレスポンス。
type sessionResponse struct {
	User         userResponse `json:"user"`
	SessionToken string       `json:"session_token"`
}

// ExchangeSession は外部プロバイダーのセッションIDをローカルセッションに交換する。
// POST /api/auth/session
func (h *AuthHandler) ExchangeSession(w http.ResponseWriter, r *http.Request) {
	// 1. セッションIDの取得（ヘッダー優先、次にボディ）
	sessionID := r.Header.Get(sessionExchangeHeader)
	if sessionID == "" && r.Body != nil {
		var req exchangeSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			sessionID = req.SessionID
		}
	}
	if sessionID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	// 2. セッション交換
	user, session, err := h.service.ExchangeSession(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 3. セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// Cookieを使えないクライアント向けにトークンもボディで返す
	writeJSON(w, http.StatusOK, sessionResponse{
		User:         toUserResponse(user),
		SessionToken: session.ID,
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout はセッションを破棄し、Cookieをクリアする。
// トークンが無効・期限切れでも成功レスポンスを返す（冪等）。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionTokenFromRequest(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// toUserResponse はユーザーモデルをAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
	}
}
