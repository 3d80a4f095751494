package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskcal/internal/dashboard"
	"github.com/hitoshi/taskcal/internal/model"
)

// --- モック定義 ---

type mockDashboardService struct {
	computeFn func(ctx context.Context, user *model.User) (*dashboard.Summary, error)
}

func (m *mockDashboardService) Compute(ctx context.Context, user *model.User) (*dashboard.Summary, error) {
	if m.computeFn != nil {
		return m.computeFn(ctx, user)
	}
	return &dashboard.Summary{}, nil
}

// --- テスト ---

func TestGetSummary_ReturnsAggregatedData(t *testing.T) {
	service := &mockDashboardService{
		computeFn: func(ctx context.Context, user *model.User) (*dashboard.Summary, error) {
			return &dashboard.Summary{
				TaskStats: dashboard.TaskStats{
					Total:     10,
					Completed: 4,
					Pending:   6,
				},
				TodayTasksCount:     2,
				UpcomingTasksCount:  3,
				UpcomingEventsCount: 5,
				CalendarConnected:   true,
			}, nil
		},
	}
	h := NewDashboardHandler(service)

	req := requestWithUser(http.MethodGet, "/api/dashboard/summary", "")
	w := httptest.NewRecorder()

	h.GetSummary(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		TaskStats struct {
			Total     int `json:"total"`
			Completed int `json:"completed"`
			Pending   int `json:"pending"`
		} `json:"task_stats"`
		TodayTasksCount     int `json:"today_tasks_count"`
		UpcomingTasksCount  int `json:"upcoming_tasks_count"`
		UpcomingEventsCount int `json:"upcoming_events_count"`
		UserInfo            struct {
			Name              string `json:"name"`
			Email             string `json:"email"`
			CalendarConnected bool   `json:"calendar_connected"`
		} `json:"user_info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.TaskStats.Total != 10 || body.TaskStats.Completed != 4 || body.TaskStats.Pending != 6 {
		t.Errorf("task_stats = %+v", body.TaskStats)
	}
	if body.TodayTasksCount != 2 {
		t.Errorf("today_tasks_count = %d, want 2", body.TodayTasksCount)
	}
	if body.UpcomingTasksCount != 3 {
		t.Errorf("upcoming_tasks_count = %d, want 3", body.UpcomingTasksCount)
	}
	if body.UpcomingEventsCount != 5 {
		t.Errorf("upcoming_events_count = %d, want 5", body.UpcomingEventsCount)
	}
	if body.UserInfo.Name != "Taro" || body.UserInfo.Email != "taro@example.com" {
		t.Errorf("user_info = %+v", body.UserInfo)
	}
	if !body.UserInfo.CalendarConnected {
		t.Error("calendar_connected should be true")
	}
}

func TestGetSummary_WithoutUser_Returns401(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	w := httptest.NewRecorder()

	h.GetSummary(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestGetSummary_ServiceFailure_Returns500(t *testing.T) {
	service := &mockDashboardService{
		computeFn: func(ctx context.Context, user *model.User) (*dashboard.Summary, error) {
			return nil, errors.New("db query failed")
		},
	}
	h := NewDashboardHandler(service)

	req := requestWithUser(http.MethodGet, "/api/dashboard/summary", "")
	w := httptest.NewRecorder()

	h.GetSummary(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}
