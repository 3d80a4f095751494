package model

import "time"

// EventKind はカレンダーイベントの出所を表すタグ。
// IDのプレフィックスによる判別ではなく、明示的なバリアントとして扱う。
type EventKind string

const (
	// EventKindReal は外部カレンダープロバイダーから取得した実イベント。
	EventKindReal EventKind = "real"
	// EventKindMock はプロバイダー未接続・障害時に合成されるモックイベント。
	EventKindMock EventKind = "mock"
	// EventKindPlaceholder はカレンダー未認可ユーザーに接続を促す疑似イベント。
	EventKindPlaceholder EventKind = "placeholder"
)

// MockCalendarID はモックイベントに付与される合成カレンダーID。
// 実プロバイダーのカレンダーIDと区別できるよう固定値とする。
const MockCalendarID = "taskcal-mock"

// CalendarEvent はカレンダー上のイベントを表す。
// 永続化されない一時データで、取得のたびに組み立てられる。
type CalendarEvent struct {
	ID          string
	Kind        EventKind
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	Location    string
	CalendarID  string
}
