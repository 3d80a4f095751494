// Package dashboard はタスクとイベントの集計を提供する。
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
	"github.com/hitoshi/taskcal/internal/repository"
)

// upcomingEventsWindow はダッシュボードが数えるイベントの先読み期間。
const upcomingEventsWindow = 7 * 24 * time.Hour

// EventCounter はイベント数の取得インターフェース。
// calendarパッケージのServiceが実装する。
type EventCounter interface {
	CountUpcoming(ctx context.Context, user *model.User, window time.Duration) int
}

// TaskStats はタスクの完了状態別の集計。
type TaskStats struct {
	Total     int
	Completed int
	Pending   int
}

// Summary はダッシュボードに表示する集計結果。
type Summary struct {
	TaskStats           TaskStats
	TodayTasksCount     int
	UpcomingTasksCount  int
	UpcomingEventsCount int
	CalendarConnected   bool
}

// Service はダッシュボード集計のサービス層。
// 副作用のない読み取り専用の集計を毎回計算する（キャッシュしない）。
type Service struct {
	taskRepo repository.TaskRepository
	events   EventCounter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository, events EventCounter) *Service {
	return &Service{
		taskRepo: taskRepo,
		events:   events,
	}
}

// Compute はユーザーのダッシュボード集計を計算する。
// 「今日」はUTCの暦日で判定し、完了状態を問わず数える。
// 「今後のタスク」は期限が今日より後かつ未完了のもの。
func (s *Service) Compute(ctx context.Context, user *model.User) (*Summary, error) {
	total, completed, err := s.taskRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("タスク集計の取得に失敗しました: %w", err)
	}

	now := time.Now().UTC()
	todayStart := now.Truncate(24 * time.Hour)
	tomorrowStart := todayStart.Add(24 * time.Hour)

	todayCount, err := s.taskRepo.CountDueBetween(ctx, user.ID, todayStart, tomorrowStart)
	if err != nil {
		return nil, fmt.Errorf("本日期限タスク数の取得に失敗しました: %w", err)
	}

	upcomingCount, err := s.taskRepo.CountDueAfterIncomplete(ctx, user.ID, tomorrowStart)
	if err != nil {
		return nil, fmt.Errorf("今後のタスク数の取得に失敗しました: %w", err)
	}

	return &Summary{
		TaskStats: TaskStats{
			Total:     total,
			Completed: completed,
			Pending:   total - completed,
		},
		TodayTasksCount:     todayCount,
		UpcomingTasksCount:  upcomingCount,
		UpcomingEventsCount: s.events.CountUpcoming(ctx, user, upcomingEventsWindow),
		CalendarConnected:   user.HasCalendarToken(),
	}, nil
}
