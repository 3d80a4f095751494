// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(duration time.Duration)
	RecordTaskCreated()
	RecordEventFetchSuccess()
	RecordEventFetchFailure()
	RecordMockFallback()
	RecordTokenRefreshSuccess()
	RecordTokenRefreshFailure()
	RecordSessionsCleaned(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus          *prometheus.CounterVec
	httpLatency         prometheus.Histogram
	tasksCreated        prometheus.Counter
	eventFetchSuccess   prometheus.Counter
	eventFetchFail      prometheus.Counter
	mockFallback        prometheus.Counter
	tokenRefreshSuccess prometheus.Counter
	tokenRefreshFail    prometheus.Counter
	sessionsCleaned     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskcal_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskcal_http_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_tasks_created_total",
			Help: "作成されたタスクの合計数",
		}),
		eventFetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_event_fetch_success_total",
			Help: "カレンダーイベント取得成功の合計数",
		}),
		eventFetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_event_fetch_fail_total",
			Help: "カレンダーイベント取得失敗の合計数",
		}),
		mockFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_mock_fallback_total",
			Help: "モックイベントへの縮退回数",
		}),
		tokenRefreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_token_refresh_success_total",
			Help: "カレンダートークンリフレッシュ成功の合計数",
		}),
		tokenRefreshFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_token_refresh_fail_total",
			Help: "カレンダートークンリフレッシュ失敗の合計数",
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskcal_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.tasksCreated,
		c.eventFetchSuccess,
		c.eventFetchFail,
		c.mockFallback,
		c.tokenRefreshSuccess,
		c.tokenRefreshFail,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// RecordTaskCreated はタスク作成を記録する。
func (c *Collector) RecordTaskCreated() {
	c.tasksCreated.Inc()
}

// RecordEventFetchSuccess はイベント取得成功を記録する。
func (c *Collector) RecordEventFetchSuccess() {
	c.eventFetchSuccess.Inc()
}

// RecordEventFetchFailure はイベント取得失敗を記録する。
func (c *Collector) RecordEventFetchFailure() {
	c.eventFetchFail.Inc()
}

// RecordMockFallback はモックイベントへの縮退を記録する。
func (c *Collector) RecordMockFallback() {
	c.mockFallback.Inc()
}

// RecordTokenRefreshSuccess はトークンリフレッシュ成功を記録する。
func (c *Collector) RecordTokenRefreshSuccess() {
	c.tokenRefreshSuccess.Inc()
}

// RecordTokenRefreshFailure はトークンリフレッシュ失敗を記録する。
func (c *Collector) RecordTokenRefreshFailure() {
	c.tokenRefreshFail.Inc()
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int) {
	c.sessionsCleaned.Add(float64(count))
}

// NewHTTPMiddleware はレスポンスのステータスコードとレイテンシを記録する
// HTTPミドルウェアを返す。
func NewHTTPMiddleware(collector MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
			collector.RecordHTTPLatency(time.Since(start))
		})
	}
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
