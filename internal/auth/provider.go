package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultSessionDataPath は外部認証プロバイダーのセッション情報エンドポイントのパス。
const defaultSessionDataPath = "/auth/v1/env/oauth/session-data"

// ProviderUserInfo は外部認証プロバイダーから取得したユーザー情報を表す。
type ProviderUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// SessionProvider は外部認証プロバイダーのインターフェース。
// 短命なセッションIDをユーザー情報に解決する。
type SessionProvider interface {
	// FetchSessionData はセッションIDでプロバイダーに問い合わせ、ユーザー情報を取得する。
	FetchSessionData(ctx context.Context, sessionID string) (*ProviderUserInfo, error)
}

// HTTPSessionProviderConfig はHTTPSessionProviderの設定。
type HTTPSessionProviderConfig struct {
	BaseURL string
	Timeout time.Duration

	// テスト用にオーバーライド可能なパス
	SessionDataPath string
}

// HTTPSessionProvider はHTTP経由で外部認証プロバイダーに問い合わせる実装。
// セッションIDはX-Session-IDヘッダーで渡す。
type HTTPSessionProvider struct {
	config HTTPSessionProviderConfig
	client *http.Client
}

// NewHTTPSessionProvider はHTTPSessionProviderを生成する。
func NewHTTPSessionProvider(config HTTPSessionProviderConfig) *HTTPSessionProvider {
	if config.SessionDataPath == "" {
		config.SessionDataPath = defaultSessionDataPath
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &HTTPSessionProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// FetchSessionData はセッションIDでプロバイダーに問い合わせ、ユーザー情報を取得する。
func (p *HTTPSessionProvider) FetchSessionData(ctx context.Context, sessionID string) (*ProviderUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+p.config.SessionDataPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session data request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session data request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read session data response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session data fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info ProviderUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse session data response: %w", err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("empty email in session data response")
	}

	return &info, nil
}

// compile-time interface check
var _ SessionProvider = (*HTTPSessionProvider)(nil)
