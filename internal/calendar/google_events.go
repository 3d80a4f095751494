package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/hitoshi/taskcal/internal/model"
)

// primaryCalendarID はGoogleカレンダーの既定カレンダーID。
const primaryCalendarID = "primary"

// EventsAPI は外部カレンダーAPIの薄い抽象。
// テストではネットワークなしのモックに差し替える。
type EventsAPI interface {
	// ListEvents は指定範囲のイベントをプロバイダーから取得する。
	ListEvents(ctx context.Context, token *oauth2.Token, start, end time.Time) ([]model.CalendarEvent, error)
}

// GoogleEventsAPI はGoogle Calendar API v3によるEventsAPI実装。
type GoogleEventsAPI struct{}

// NewGoogleEventsAPI はGoogleEventsAPIを生成する。
func NewGoogleEventsAPI() *GoogleEventsAPI {
	return &GoogleEventsAPI{}
}

// ListEvents はprimaryカレンダーのイベントを開始時刻順で取得する。
// 繰り返しイベントは個別イベントに展開する。
func (g *GoogleEventsAPI) ListEvents(ctx context.Context, token *oauth2.Token, start, end time.Time) ([]model.CalendarEvent, error) {
	svc, err := gcal.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	res, err := svc.Events.List(primaryCalendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]model.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		ev, err := toCalendarEvent(item)
		if err != nil {
			return nil, fmt.Errorf("failed to map event %s: %w", item.Id, err)
		}
		events = append(events, ev)
	}

	return events, nil
}

// toCalendarEvent はプロバイダーのイベントをドメインモデルに変換する。
// Dateのみのイベントは終日イベントとして扱う。
func toCalendarEvent(item *gcal.Event) (model.CalendarEvent, error) {
	ev := model.CalendarEvent{
		ID:          item.Id,
		Kind:        model.EventKindReal,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		CalendarID:  primaryCalendarID,
	}

	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return model.CalendarEvent{}, err
	}

	ev.StartTime = start
	ev.EndTime = end
	ev.AllDay = allDay
	return ev, nil
}

// parseEventTime はGoogleのEventDateTimeを時刻と終日フラグに解決する。
func parseEventTime(edt *gcal.EventDateTime) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, fmt.Errorf("missing event time")
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid event datetime %q: %w", edt.DateTime, err)
		}
		return t.UTC(), false, nil
	}
	if edt.Date != "" {
		t, err := time.Parse("2006-01-02", edt.Date)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid event date %q: %w", edt.Date, err)
		}
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("event time has neither date nor datetime")
}

// compile-time interface check
var _ EventsAPI = (*GoogleEventsAPI)(nil)
