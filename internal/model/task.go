package model

import "time"

// Priority はタスクの優先度を表す。
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ValidPriority は優先度が定義済みの値かどうかを判定する。
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DefaultCategory はカテゴリ未指定時に適用されるカテゴリ名。
const DefaultCategory = "General"

// Task はユーザーが管理するタスクを表す。
// 所有者（UserID）以外からは一切到達できない。
// DueDate / Reminder はオプションのためポインタで保持する。
// 永続化されるタイムスタンプはすべてUTCに正規化される。
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Category    string
	Priority    Priority
	Completed   bool
	DueDate     *time.Time
	Reminder    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter はタスク一覧取得時の絞り込み条件。
// nilのフィールドは条件として使用しない。
type TaskFilter struct {
	Completed *bool
	Category  *string
}
