package calendar

import (
	"fmt"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
)

// mockSchedule はモックイベントの雛形。範囲開始日からのオフセットで配置する。
type mockSchedule struct {
	title       string // "%s"はユーザー表示名に置換される
	description string
	offset      time.Duration
	duration    time.Duration
	allDay      bool
	location    string
	personal    bool
}

// mockSchedules は合成イベントの固定スケジュール。
// 同一の範囲に対して常に同一のイベント列を生成する。
var mockSchedules = []mockSchedule{
	{
		title:       "Welcome Meeting - %s",
		description: "Onboarding session and goal setting",
		offset:      2 * time.Hour,
		duration:    time.Hour,
		location:    "Conference Room A",
		personal:    true,
	},
	{
		title:       "Project Planning Session",
		description: "Quarterly planning and resource allocation",
		offset:      24*time.Hour + 10*time.Hour,
		duration:    2 * time.Hour,
		location:    "Meeting Room B",
	},
	{
		title:       "All Hands Meeting",
		description: "Company-wide updates and announcements",
		offset:      3 * 24 * time.Hour,
		duration:    time.Hour,
		allDay:      true,
		location:    "Main Auditorium",
	},
	{
		title:       "Client Presentation",
		description: "Present project proposal and deliverables",
		offset:      5*24*time.Hour + 14*time.Hour,
		duration:    90 * time.Minute,
		location:    "Client Office - Downtown",
	},
	{
		title:       "Team Building Workshop",
		description: "Interactive team building and collaboration exercises",
		offset:      8*24*time.Hour + 9*time.Hour,
		duration:    8 * time.Hour,
		location:    "Offsite Location",
	},
	{
		title:       "Performance Review - %s",
		description: "Quarterly review session",
		offset:      10*24*time.Hour + 15*time.Hour,
		duration:    time.Hour,
		location:    "Manager's Office",
		personal:    true,
	},
	{
		title:       "Training Workshop",
		description: "Professional development and skill enhancement",
		offset:      12*24*time.Hour + 13*time.Hour,
		duration:    4 * time.Hour,
		location:    "Training Center",
	},
	{
		title:       "Monthly Standup",
		description: "Progress updates and roadmap discussion",
		offset:      15*24*time.Hour + 10*time.Hour,
		duration:    time.Hour,
		location:    "Virtual Meeting",
	},
}

// MockEvents は指定範囲内の決定的なモックイベント列を生成する。
// タイトルはユーザーの表示名でパーソナライズされ、カレンダーIDは
// 実プロバイダーと区別可能な合成値になる。
func MockEvents(user *model.User, start, end time.Time) []model.CalendarEvent {
	base := start.UTC().Truncate(24 * time.Hour)

	events := make([]model.CalendarEvent, 0, len(mockSchedules))
	for i, s := range mockSchedules {
		title := s.title
		if s.personal {
			title = fmt.Sprintf(s.title, user.Name)
		}

		evStart := base.Add(s.offset)
		if evStart.Before(start.UTC()) || !evStart.Before(end.UTC()) {
			continue
		}

		events = append(events, model.CalendarEvent{
			ID:          fmt.Sprintf("mock-%d", i+1),
			Kind:        model.EventKindMock,
			Title:       title,
			Description: s.description,
			StartTime:   evStart,
			EndTime:     evStart.Add(s.duration),
			AllDay:      s.allDay,
			Location:    s.location,
			CalendarID:  model.MockCalendarID,
		})
	}

	return events
}

// PlaceholderEvent はカレンダー未認可ユーザーに接続を促す疑似イベントを生成する。
// エラーではなく通常のイベントとして返す。
func PlaceholderEvent(start time.Time) model.CalendarEvent {
	s := start.UTC()
	return model.CalendarEvent{
		ID:          "auth-required",
		Kind:        model.EventKindPlaceholder,
		Title:       "Connect your Google Calendar",
		Description: "Authorize calendar access to see your real events here.",
		StartTime:   s,
		EndTime:     s.Add(time.Hour),
		AllDay:      true,
		CalendarID:  model.MockCalendarID,
	}
}
