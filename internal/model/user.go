// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 初回のセッション交換時に作成され、通常フローでは削除されない。
// Googleカレンダー認可後はトークン類が設定される。
type User struct {
	ID      string
	Email   string
	Name    string
	Picture string

	// Googleカレンダー連携用トークン（未認可の間はゼロ値）
	GoogleAccessToken  string
	GoogleRefreshToken string
	GoogleTokenExpiry  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCalendarToken はカレンダー用のトークンが保存済みかどうかを返す。
func (u *User) HasCalendarToken() bool {
	return u.GoogleAccessToken != "" || u.GoogleRefreshToken != ""
}

// Session はユーザーのログインセッションを表す。
// IDは暗号的に安全な不透明トークンで、同一ユーザーの複数セッションが共存できる。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
