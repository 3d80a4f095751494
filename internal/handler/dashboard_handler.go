package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/taskcal/internal/dashboard"
	"github.com/hitoshi/taskcal/internal/middleware"
	"github.com/hitoshi/taskcal/internal/model"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	// Compute はユーザーのダッシュボード集計を計算する。
	Compute(ctx context.Context, user *model.User) (*dashboard.Summary, error)
}

// DashboardHandler はダッシュボード集計のHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// taskStatsResponse はタスク集計のAPIレスポンス。
type taskStatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// dashboardUserInfo はダッシュボードに含めるユーザー情報。
type dashboardUserInfo struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	CalendarConnected bool   `json:"calendar_connected"`
}

// dashboardResponse はダッシュボード集計のAPIレスポンス。
type dashboardResponse struct {
	TaskStats           taskStatsResponse `json:"task_stats"`
	TodayTasksCount     int               `json:"today_tasks_count"`
	UpcomingTasksCount  int               `json:"upcoming_tasks_count"`
	UpcomingEventsCount int               `json:"upcoming_events_count"`
	UserInfo            dashboardUserInfo `json:"user_info"`
}

// GetSummary はダッシュボード集計を返す。
// GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	summary, err := h.service.Compute(r.Context(), user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TaskStats: taskStatsResponse{
			Total:     summary.TaskStats.Total,
			Completed: summary.TaskStats.Completed,
			Pending:   summary.TaskStats.Pending,
		},
		TodayTasksCount:     summary.TodayTasksCount,
		UpcomingTasksCount:  summary.UpcomingTasksCount,
		UpcomingEventsCount: summary.UpcomingEventsCount,
		UserInfo: dashboardUserInfo{
			Name:              user.Name,
			Email:             user.Email,
			CalendarConnected: summary.CalendarConnected,
		},
	})
}
