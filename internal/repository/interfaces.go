// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// セッション交換時のユーザー同定に使用する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は表示名とアイコンURLを更新する。
	UpdateProfile(ctx context.Context, id, name, picture string) error

	// UpdateCalendarToken はGoogleカレンダー用のトークン一式を更新する。
	// トークンリフレッシュはこの1ユーザー行のみを更新する。
	UpdateCalendarToken(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合および期限切れの場合はnilを返す。
	// 期限切れの行は検出時に遅延削除される。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。存在しないIDでもエラーにしない。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// FindByIDAndUser は指定ユーザーが所有するタスクを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error)

	// ListByUser はユーザーのタスク一覧をフィルタ適用のうえ作成日時降順で返す。
	ListByUser(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error)

	// Update はタスクを上書き更新する。所有者の変更は行わない。
	Update(ctx context.Context, task *model.Task) error

	// DeleteByIDAndUser は指定ユーザー所有のタスクを削除する。
	// 削除対象が存在した場合はtrueを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)

	// DistinctCategories はユーザーのタスクで実際に使用中のカテゴリを昇順で返す。
	DistinctCategories(ctx context.Context, userID string) ([]string, error)

	// CountByUser はユーザーのタスク総数と完了数を返す。
	CountByUser(ctx context.Context, userID string) (total int, completed int, err error)

	// CountDueBetween は期限が[from, to)に入るタスク数を返す（完了状態は問わない）。
	CountDueBetween(ctx context.Context, userID string, from, to time.Time) (int, error)

	// CountDueAfterIncomplete は期限がafter以降かつ未完了のタスク数を返す。
	CountDueAfterIncomplete(ctx context.Context, userID string, after time.Time) (int, error)
}
