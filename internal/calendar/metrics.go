package calendar

// Metrics はカレンダー連携のメトリクス収集インターフェース。
// metricsパッケージのCollectorが実装する。
type Metrics interface {
	RecordTokenRefreshSuccess()
	RecordTokenRefreshFailure()
	RecordEventFetchSuccess()
	RecordEventFetchFailure()
	RecordMockFallback()
}

// nopMetrics はメトリクス未設定時に使用する何もしない実装。
type nopMetrics struct{}

func (nopMetrics) RecordTokenRefreshSuccess() {}
func (nopMetrics) RecordTokenRefreshFailure() {}
func (nopMetrics) RecordEventFetchSuccess()   {}
func (nopMetrics) RecordEventFetchFailure()   {}
func (nopMetrics) RecordMockFallback()        {}
