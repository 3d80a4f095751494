package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/taskcal/internal/calendar"
	"github.com/hitoshi/taskcal/internal/middleware"
	"github.com/hitoshi/taskcal/internal/model"
)

const (
	// oauthStateCookie はOAuthのstate値を保持するCookie名。
	oauthStateCookie = "oauth_state"

	// defaultEventsLookbehind はイベント取得範囲の開始デフォルト（現在からの遡り）。
	defaultEventsLookbehind = 24 * time.Hour

	// defaultEventsLookahead はイベント取得範囲の終了デフォルト（現在からの先読み）。
	defaultEventsLookahead = 30 * 24 * time.Hour
)

// CalendarAuthorizerInterface はカレンダー認可に必要なインターフェース。
type CalendarAuthorizerInterface interface {
	// BeginAuthorization は同意画面へのリダイレクトURLを生成する。
	BeginAuthorization(state string) string
	// CompleteAuthorization は認可コードをトークンに交換し永続化する。
	CompleteAuthorization(ctx context.Context, user *model.User, code string) error
	// Status はユーザーの認可状態を返す。
	Status(user *model.User) calendar.AuthStatus
}

// EventListerInterface はイベント取得に必要なインターフェース。
type EventListerInterface interface {
	// ListEvents は指定範囲のイベント列を返す。エラーは返さない。
	ListEvents(ctx context.Context, user *model.User, start, end time.Time) []model.CalendarEvent
}

// CalendarHandlerConfig はカレンダーハンドラーの設定。
type CalendarHandlerConfig struct {
	BaseURL      string // 認可完了後のリダイレクト先
	CookieSecure bool
}

// CalendarHandler はカレンダー認可とイベント取得のHTTPハンドラー。
type CalendarHandler struct {
	authorizer CalendarAuthorizerInterface
	events     EventListerInterface
	config     CalendarHandlerConfig
}

// NewCalendarHandler はCalendarHandlerを生成する。
func NewCalendarHandler(authorizer CalendarAuthorizerInterface, events EventListerInterface, config CalendarHandlerConfig) *CalendarHandler {
	return &CalendarHandler{
		authorizer: authorizer,
		events:     events,
		config:     config,
	}
}

// eventResponse はカレンダーイベントのAPIレスポンス。
type eventResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	Location    string    `json:"location,omitempty"`
	CalendarID  string    `json:"calendar_id"`
}

// authStatusResponse は認可状態のAPIレスポンス。
type authStatusResponse struct {
	Authorized bool   `json:"authorized"`
	Status     string `json:"status"`
	AuthURL    string `json:"auth_url,omitempty"`
}

// Connect はGoogleカレンダー認可フローを開始する。
// GET /api/auth/google/calendar
func (h *CalendarHandler) Connect(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.authorizer.BeginAuthorization(state), http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /api/auth/google/callback?code=xxx&state=yyy
func (h *CalendarHandler) Callback(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("user_id", user.ID),
		)
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	// 3. コード交換とトークン永続化
	if err := h.authorizer.CompleteAuthorization(r.Context(), user, code); err != nil {
		handleServiceError(w, err)
		return
	}

	// 4. フロントエンドにリダイレクト
	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// AuthStatus はカレンダー認可状態を返す。
// GET /api/calendar/auth-status
func (h *CalendarHandler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	status := h.authorizer.Status(user)
	res := authStatusResponse{
		Authorized: status == calendar.StatusAuthorized,
		Status:     string(status),
	}
	if status != calendar.StatusAuthorized {
		res.AuthURL = "/api/auth/google/calendar"
	}

	writeJSON(w, http.StatusOK, res)
}

// ListEvents は指定範囲のカレンダーイベントを返す。
// 範囲が未指定または解析不能な場合は現在の24時間前から30日後までを使う。
// GET /api/calendar/events?start=RFC3339&end=RFC3339
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	now := time.Now().UTC()
	start := now.Add(-defaultEventsLookbehind)
	end := now.Add(defaultEventsLookahead)

	// 未指定・解析不能な境界はデフォルトのまま黙って進める
	if t, parseErr := time.Parse(time.RFC3339, r.URL.Query().Get("start")); parseErr == nil {
		start = t
	}
	if t, parseErr := time.Parse(time.RFC3339, r.URL.Query().Get("end")); parseErr == nil {
		end = t
	}
	if !end.After(start) {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("endはstartより後の時刻を指定してください"))
		return
	}

	events := h.events.ListEvents(r.Context(), user, start, end)

	res := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		res = append(res, toEventResponse(ev))
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": res})
}

// TestGoogleAccess はカレンダー連携の診断情報を返す。
// GET /api/calendar/test-google-access
func (h *CalendarHandler) TestGoogleAccess(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	status := h.authorizer.Status(user)

	var recommendation string
	switch status {
	case calendar.StatusNotAuthorized:
		recommendation = "カレンダー未連携です。/api/auth/google/calendar から連携してください。"
	case calendar.StatusExpired:
		recommendation = "トークンが期限切れです。/api/auth/google/calendar から再連携してください。"
	default:
		recommendation = "カレンダー連携は有効です。"
	}

	// 実イベントが取得できているかの簡易確認。
	// モック・疑似イベントしか返らない場合は実アクセス不能とみなす。
	now := time.Now().UTC()
	events := h.events.ListEvents(r.Context(), user, now, now.Add(defaultEventsLookahead))
	realAccess := false
	for _, ev := range events {
		if ev.Kind == model.EventKindReal {
			realAccess = true
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          string(status),
		"real_access":     realAccess,
		"events_returned": len(events),
		"recommendation":  recommendation,
	})
}

// toEventResponse はイベントモデルをAPIレスポンスに変換する。
func toEventResponse(ev model.CalendarEvent) eventResponse {
	return eventResponse{
		ID:          ev.ID,
		Kind:        string(ev.Kind),
		Title:       ev.Title,
		Description: ev.Description,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		AllDay:      ev.AllDay,
		Location:    ev.Location,
		CalendarID:  ev.CalendarID,
	}
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
