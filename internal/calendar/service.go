package calendar

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
)

// Service はカレンダーイベントの取得を提供する。
// 認可済みユーザーには実プロバイダーのイベントを、それ以外には
// モックイベントまたは接続を促す疑似イベントを返す。
type Service struct {
	authorizer *Authorizer
	api        EventsAPI
	metrics    Metrics
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(authorizer *Authorizer, api EventsAPI, metrics Metrics) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		authorizer: authorizer,
		api:        api,
		metrics:    metrics,
	}
}

// ListEvents は指定範囲のイベント列を返す。
// この操作は決してエラーを返さない: プロバイダー障害・トークン失効は
// ログとメトリクスに記録したうえでモックデータに縮退する。
//   - 未認可ユーザー: 接続を促す疑似イベント1件のみ
//   - トークン取得不能（リフレッシュ失敗含む）: モックイベント
//   - プロバイダー呼び出し失敗: モックイベント
func (s *Service) ListEvents(ctx context.Context, user *model.User, start, end time.Time) []model.CalendarEvent {
	if !user.HasCalendarToken() {
		return []model.CalendarEvent{PlaceholderEvent(start)}
	}

	token := s.authorizer.EnsureFreshToken(ctx, user)
	if token == nil {
		s.metrics.RecordMockFallback()
		return MockEvents(user, start, end)
	}

	events, err := s.api.ListEvents(ctx, token, start, end)
	if err != nil {
		s.metrics.RecordEventFetchFailure()
		s.metrics.RecordMockFallback()
		slog.Warn("calendar event fetch failed, falling back to mock data",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return MockEvents(user, start, end)
	}

	s.metrics.RecordEventFetchSuccess()
	return events
}

// CountUpcoming は現在時刻からwindow先までのイベント数を返す。
// ダッシュボード集計用。
func (s *Service) CountUpcoming(ctx context.Context, user *model.User, window time.Duration) int {
	now := time.Now().UTC()
	return len(s.ListEvents(ctx, user, now, now.Add(window)))
}
