package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/taskcal/internal/metrics"
	"github.com/hitoshi/taskcal/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// メトリクス
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// カレンダー
	CalendarAuthorizer CalendarAuthorizerInterface
	EventLister        EventListerInterface
	CalendarConfig     CalendarHandlerConfig

	// タスク
	TaskService TaskServiceInterface

	// ダッシュボード
	DashboardService DashboardServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Metrics → Logging → Recovery
//	→ (認証ルートのみ) Session → RateLimit(General) → CSRF
//
// セッション交換とログアウトはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.MetricsCollector != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.MetricsCollector))
	}
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	calendarHandler := NewCalendarHandler(deps.CalendarAuthorizer, deps.EventLister, deps.CalendarConfig)
	taskHandler := NewTaskHandler(deps.TaskService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)

	// --- 認証不要のルート ---

	// 死活確認
	r.Get("/api/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "taskcal API"})
	})

	// ヘルスチェック（DB疎通を含む）
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheusスクレイプ
	if deps.MetricsGatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP)
	}

	// CSRFトークン発行
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// セッション交換（認証前なのでセッションミドルウェアの外）
	r.Post("/api/auth/session", authHandler.ExchangeSession)

	// ログアウト（期限切れセッションでも成功させるため外に置く）
	r.Post("/api/auth/logout", authHandler.Logout)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// 認証済みユーザー情報
		r.Get("/api/auth/me", authHandler.Me)

		// カレンダー認可フロー
		r.Get("/api/auth/google/calendar", calendarHandler.Connect)
		r.Get("/api/auth/google/callback", calendarHandler.Callback)

		// カレンダー
		r.Route("/api/calendar", func(r chi.Router) {
			r.Get("/auth-status", calendarHandler.AuthStatus)
			r.Get("/events", calendarHandler.ListEvents)
			r.Get("/test-google-access", calendarHandler.TestGoogleAccess)
		})

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Get("/categories", taskHandler.ListCategories)

			// 書き込み系には専用レート制限を追加
			r.With(deps.RateLimiter.TaskWriteMiddleware()).Post("/", taskHandler.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.With(deps.RateLimiter.TaskWriteMiddleware()).Put("/", taskHandler.UpdateTask)
				r.With(deps.RateLimiter.TaskWriteMiddleware()).Delete("/", taskHandler.DeleteTask)
			})
		})

		// ダッシュボード
		r.Get("/api/dashboard/summary", dashboardHandler.GetSummary)
	})

	return r
}
