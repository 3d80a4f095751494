package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// --- モック定義 ---

type mockSessionSweeper struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
	callCount       atomic.Int64
}

func (m *mockSessionSweeper) DeleteExpired(ctx context.Context) (int64, error) {
	m.callCount.Add(1)
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type spyMetrics struct {
	cleaned atomic.Int64
}

func (s *spyMetrics) RecordSessionsCleaned(count int) {
	s.cleaned.Add(int64(count))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- テスト ---

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	sweeper := &mockSessionSweeper{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 5, nil
		},
	}
	metrics := &spyMetrics{}
	job := NewCleanupJob(sweeper, testLogger(), metrics)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := sweeper.callCount.Load(); got != 1 {
		t.Errorf("DeleteExpired call count = %d, want 1", got)
	}
	if got := metrics.cleaned.Load(); got != 5 {
		t.Errorf("recorded cleaned count = %d, want 5", got)
	}
}

func TestCleanupJob_Run_NoExpiredSessions_Succeeds(t *testing.T) {
	sweeper := &mockSessionSweeper{}
	job := NewCleanupJob(sweeper, testLogger(), nil)

	// 削除対象がなくてもエラーにならない（冪等性）
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCleanupJob_Run_SweeperError_ReturnsError(t *testing.T) {
	wantErr := errors.New("db connection lost")
	sweeper := &mockSessionSweeper{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, wantErr
		},
	}
	metrics := &spyMetrics{}
	job := NewCleanupJob(sweeper, testLogger(), metrics)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
	if got := metrics.cleaned.Load(); got != 0 {
		t.Errorf("metrics should not be recorded on failure, got %d", got)
	}
}

func TestCleanupJob_Run_NilMetrics_DoesNotPanic(t *testing.T) {
	sweeper := &mockSessionSweeper{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	}
	job := NewCleanupJob(sweeper, testLogger(), nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCleanupJob_Start_RunsImmediatelyThenPeriodically(t *testing.T) {
	sweeper := &mockSessionSweeper{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 1, nil
		},
	}
	job := NewCleanupJob(sweeper, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 20*time.Millisecond)
		close(done)
	}()

	// 起動直後の1回 + ticker分で2回以上実行されるまで待つ
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sweeper.callCount.Load() >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := sweeper.callCount.Load(); got < 2 {
		t.Errorf("DeleteExpired call count = %d, want >= 2", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not stop after context cancellation")
	}
}

func TestCleanupJob_Start_ContinuesAfterRunError(t *testing.T) {
	sweeper := &mockSessionSweeper{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("transient failure")
		},
	}
	job := NewCleanupJob(sweeper, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 20*time.Millisecond)
		close(done)
	}()

	// エラーが出てもループが止まらないこと
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sweeper.callCount.Load() >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := sweeper.callCount.Load(); got < 2 {
		t.Errorf("DeleteExpired call count = %d, want >= 2", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not stop after context cancellation")
	}
}
