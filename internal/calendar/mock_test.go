package calendar

import (
	"testing"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
)

func rangeStart(t *testing.T) time.Time {
	t.Helper()
	start, err := time.Parse(time.RFC3339, "2025-06-01T00:00:00Z")
	if err != nil {
		t.Fatalf("failed to parse range start: %v", err)
	}
	return start
}

func TestMockEvents_FullRange_ReturnsAllEvents(t *testing.T) {
	user := &model.User{ID: "user-1", Name: "Taro"}
	start := rangeStart(t)
	end := start.Add(30 * 24 * time.Hour)

	events := MockEvents(user, start, end)

	if len(events) != 8 {
		t.Fatalf("len(events) = %d, want 8", len(events))
	}

	for _, ev := range events {
		if ev.Kind != model.EventKindMock {
			t.Errorf("event %s: Kind = %q, want %q", ev.ID, ev.Kind, model.EventKindMock)
		}
		if ev.CalendarID != model.MockCalendarID {
			t.Errorf("event %s: CalendarID = %q, want %q", ev.ID, ev.CalendarID, model.MockCalendarID)
		}
		if !ev.StartTime.Before(ev.EndTime) {
			t.Errorf("event %s: StartTime %v should be before EndTime %v", ev.ID, ev.StartTime, ev.EndTime)
		}
	}
}

func TestMockEvents_Deterministic(t *testing.T) {
	user := &model.User{ID: "user-1", Name: "Taro"}
	start := rangeStart(t)
	end := start.Add(30 * 24 * time.Hour)

	first := MockEvents(user, start, end)
	second := MockEvents(user, start, end)

	if len(first) != len(second) {
		t.Fatalf("event counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("event %d differs between calls:\n  first:  %+v\n  second: %+v", i, first[i], second[i])
		}
	}
}

func TestMockEvents_PersonalizesTitles(t *testing.T) {
	user := &model.User{ID: "user-1", Name: "Hanako"}
	start := rangeStart(t)
	end := start.Add(30 * 24 * time.Hour)

	events := MockEvents(user, start, end)

	personalized := 0
	for _, ev := range events {
		if ev.Title == "Welcome Meeting - Hanako" || ev.Title == "Performance Review - Hanako" {
			personalized++
		}
	}
	if personalized != 2 {
		t.Errorf("personalized titles = %d, want 2", personalized)
	}
}

func TestMockEvents_NarrowRange_FiltersEvents(t *testing.T) {
	user := &model.User{ID: "user-1", Name: "Taro"}
	start := rangeStart(t)
	// 最初のイベント（開始2時間後）のみが入る範囲
	end := start.Add(12 * time.Hour)

	events := MockEvents(user, start, end)

	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Title != "Welcome Meeting - Taro" {
		t.Errorf("title = %q, want %q", events[0].Title, "Welcome Meeting - Taro")
	}
}

func TestMockEvents_EmptyRange_ReturnsNoEvents(t *testing.T) {
	user := &model.User{ID: "user-1", Name: "Taro"}
	start := rangeStart(t)

	events := MockEvents(user, start, start.Add(time.Hour))

	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestPlaceholderEvent_PromptsCalendarConnection(t *testing.T) {
	start := rangeStart(t)

	ev := PlaceholderEvent(start)

	if ev.Kind != model.EventKindPlaceholder {
		t.Errorf("Kind = %q, want %q", ev.Kind, model.EventKindPlaceholder)
	}
	if ev.ID != "auth-required" {
		t.Errorf("ID = %q, want %q", ev.ID, "auth-required")
	}
	if !ev.AllDay {
		t.Error("placeholder event should be all-day")
	}
	if ev.Title == "" {
		t.Error("placeholder event should have a title")
	}
	if !ev.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", ev.StartTime, start)
	}
}
