// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // 機械可読なエラー種別
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, calendar, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUpstreamAuth       = "UPSTREAM_AUTH_ERROR"
	ErrCodeOAuthExchange      = "OAUTH_EXCHANGE_ERROR"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewUnauthenticatedError は未認証エラーを生成する。
// セッションが存在しない・無効・期限切れのいずれの場合も同一のエラーを返す。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 他ユーザー所有のタスクへのアクセスも存在しない扱いとする。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidRequestError はリクエスト解析エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewUpstreamAuthError は外部認証プロバイダー呼び出し失敗エラーを生成する。
func NewUpstreamAuthError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamAuth,
		Message:  fmt.Sprintf("外部認証プロバイダーとの通信に失敗しました: %s", reason),
		Category: "auth",
		Action:   "しばらく待ってから再度ログインしてください。",
	}
}

// NewOAuthExchangeError はGoogle OAuthコード交換失敗エラーを生成する。
func NewOAuthExchangeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeOAuthExchange,
		Message:  fmt.Sprintf("カレンダー認可コードの交換に失敗しました: %s", reason),
		Category: "calendar",
		Action:   "カレンダー連携を再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
