// Package calendar はGoogleカレンダーのOAuth認可とイベント取得を提供する。
// プロバイダー障害時はモックイベントへフォールバックし、呼び出し元の
// リクエストを失敗させない。
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/hitoshi/taskcal/internal/model"
	"github.com/hitoshi/taskcal/internal/repository"
)

// calendarReadonlyScope は読み取り専用のカレンダースコープ。
const calendarReadonlyScope = "https://www.googleapis.com/auth/calendar.readonly"

// AuthStatus はユーザーごとのカレンダー認可状態を表す。
type AuthStatus string

const (
	// StatusNotAuthorized はトークン未保存の状態。
	StatusNotAuthorized AuthStatus = "not_authorized"
	// StatusAuthorized は有効なトークン（またはリフレッシュ可能なトークン）を保持する状態。
	StatusAuthorized AuthStatus = "authorized"
	// StatusExpired はアクセストークンが期限切れで、リフレッシュ手段もない状態。
	StatusExpired AuthStatus = "expired"
)

// AuthorizerConfig はAuthorizerの設定。
type AuthorizerConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authorizer はユーザーごとのGoogleカレンダーOAuthトークンを管理する。
// 認可URL発行、コード交換、期限検出、サイレントリフレッシュを担う。
type Authorizer struct {
	conf     *oauth2.Config
	userRepo repository.UserRepository
	metrics  Metrics
}

// NewAuthorizer はAuthorizerを生成する。metricsはnilでもよい。
func NewAuthorizer(config AuthorizerConfig, userRepo repository.UserRepository, metrics Metrics) *Authorizer {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Authorizer{
		conf: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{calendarReadonlyScope},
		},
		userRepo: userRepo,
		metrics:  metrics,
	}
}

// BeginAuthorization は同意画面へのリダイレクトURLを生成する。
// リフレッシュトークンを確実に得るためオフラインアクセスと再同意を要求する。
func (a *Authorizer) BeginAuthorization(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// CompleteAuthorization は認可コードをトークンに交換し、ユーザー行に永続化する。
func (a *Authorizer) CompleteAuthorization(ctx context.Context, user *model.User, code string) error {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		slog.Warn("oauth code exchange failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return model.NewOAuthExchangeError(err.Error())
	}

	// プロバイダーがリフレッシュトークンを省略した場合は既存のものを維持する
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = user.GoogleRefreshToken
	}

	if err := a.userRepo.UpdateCalendarToken(ctx, user.ID, tok.AccessToken, refresh, tok.Expiry); err != nil {
		return fmt.Errorf("failed to persist calendar token: %w", err)
	}

	user.GoogleAccessToken = tok.AccessToken
	user.GoogleRefreshToken = refresh
	user.GoogleTokenExpiry = tok.Expiry.UTC()

	slog.Info("calendar authorization completed", slog.String("user_id", user.ID))
	return nil
}

// Status はユーザーの認可状態を返す。ネットワークアクセスは行わない。
// 期限切れでもリフレッシュトークンがあればauthorized扱いとする
// （実際のリフレッシュはEnsureFreshTokenが行う）。
func (a *Authorizer) Status(user *model.User) AuthStatus {
	if !user.HasCalendarToken() {
		return StatusNotAuthorized
	}
	expired := !user.GoogleTokenExpiry.IsZero() &&
		!user.GoogleTokenExpiry.After(time.Now().UTC())
	if expired && user.GoogleRefreshToken == "" {
		return StatusExpired
	}
	return StatusAuthorized
}

// EnsureFreshToken は有効なアクセストークンを返す。
// 保存済みトークンが未失効ならそれを、失効済みならリフレッシュトークンで
// サイレントに再取得して永続化したものを返す。
// リフレッシュ不能・失敗時はnilを返し、エラーにはしない（呼び出し元は
// モックデータへフォールバックする）。
func (a *Authorizer) EnsureFreshToken(ctx context.Context, user *model.User) *oauth2.Token {
	if !user.HasCalendarToken() {
		return nil
	}

	stored := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
		TokenType:    "Bearer",
		Expiry:       user.GoogleTokenExpiry,
	}

	if stored.Valid() {
		return stored
	}

	if stored.RefreshToken == "" {
		slog.Warn("calendar token expired and no refresh token stored",
			slog.String("user_id", user.ID),
		)
		return nil
	}

	tok, err := a.conf.TokenSource(ctx, stored).Token()
	if err != nil {
		a.metrics.RecordTokenRefreshFailure()
		slog.Warn("calendar token refresh failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	a.metrics.RecordTokenRefreshSuccess()

	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = stored.RefreshToken
	}

	if err := a.userRepo.UpdateCalendarToken(ctx, user.ID, tok.AccessToken, refresh, tok.Expiry); err != nil {
		// 永続化失敗でもリクエスト自体は新トークンで続行できる
		slog.Error("failed to persist refreshed calendar token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		user.GoogleAccessToken = tok.AccessToken
		user.GoogleRefreshToken = refresh
		user.GoogleTokenExpiry = tok.Expiry.UTC()
	}

	slog.Info("calendar token refreshed", slog.String("user_id", user.ID))
	return tok
}
