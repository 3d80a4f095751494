package repository

import (
	"testing"
	"time"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// PostgresTaskRepoはTaskRepositoryインターフェースを満たすことを検証
func TestPostgresTaskRepo_ImplementsInterface(t *testing.T) {
	var _ TaskRepository = (*PostgresTaskRepo)(nil)
}

// NewPostgresSessionRepoが正しく初期化されることを検証
func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 期限判定がタイムゾーン表現に依存しないことを検証する。
// DBドライバーがどのロケーションでスキャンしても、同一時刻なら同じ判定になること。
func TestSessionExpired_IndependentOfTimezoneRepresentation(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	jst := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"過去のUTC時刻", now.Add(-1 * time.Hour), true},
		{"過去の時刻をJSTで表現", now.Add(-1 * time.Hour).In(jst), true},
		{"未来のUTC時刻", now.Add(1 * time.Hour), false},
		{"未来の時刻をJSTで表現", now.Add(1 * time.Hour).In(jst), false},
		{"ちょうど期限時刻", now, true},
		{"ちょうど期限時刻をJSTで表現", now.In(jst), true},
		{"1秒先", now.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessionExpired(tt.expiresAt, now); got != tt.want {
				t.Errorf("sessionExpired(%v, %v) = %v, want %v", tt.expiresAt, now, got, tt.want)
			}
		})
	}
}

// 同一瞬間を異なるゾーンで表現しても判定が一致することを検証
func TestSessionExpired_SameInstantDifferentZones_AgreeOnVerdict(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(-30 * time.Minute)

	zones := []*time.Location{
		time.UTC,
		time.FixedZone("JST", 9*60*60),
		time.FixedZone("PST", -8*60*60),
	}

	for _, loc := range zones {
		if !sessionExpired(expiry.In(loc), now.In(loc)) {
			t.Errorf("expired session in zone %v should be detected as expired", loc)
		}
	}
}
