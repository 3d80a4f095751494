// Package task はタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskcal/internal/model"
	"github.com/hitoshi/taskcal/internal/repository"
	"github.com/hitoshi/taskcal/internal/security"
)

// CreateInput はタスク作成の入力。
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	DueDate     *time.Time
	Reminder    *time.Time
}

// UpdateInput はタスク部分更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Completed   *bool
	DueDate     *time.Time
	Reminder    *time.Time
}

// Metrics はタスク操作のメトリクス収集インターフェース。
type Metrics interface {
	RecordTaskCreated()
}

// nopMetrics はメトリクス未設定時の何もしない実装。
type nopMetrics struct{}

func (nopMetrics) RecordTaskCreated() {}

// Service はタスクのCRUDと検証のビジネスロジックを提供する。
// すべての操作は呼び出しユーザーのタスクにのみ作用する。
type Service struct {
	taskRepo  repository.TaskRepository
	sanitizer security.TextSanitizerService
	metrics   Metrics
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnilでもよい。
func NewService(taskRepo repository.TaskRepository, sanitizer security.TextSanitizerService, metrics Metrics) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Create はタスクを検証のうえ作成する。
// タイトルはトリム後に空であってはならない。優先度は未指定ならMedium、
// 定義外の値は検証エラー。カテゴリは未指定ならGeneral。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Task, error) {
	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}

	priority, err := resolvePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	now := time.Now().UTC()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: s.sanitizer.Sanitize(input.Description),
		Category:    category,
		Priority:    priority,
		Completed:   false,
		DueDate:     normalizeTime(input.DueDate),
		Reminder:    normalizeTime(input.Reminder),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	s.metrics.RecordTaskCreated()
	return task, nil
}

// List はユーザーのタスク一覧をフィルタ適用のうえ返す。
func (s *Service) List(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Update はユーザー所有のタスクに部分更新を適用する。
// 存在しない・他ユーザー所有の場合はTASK_NOT_FOUNDを返す。
func (s *Service) Update(ctx context.Context, userID, taskID string, input UpdateInput) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	if input.Title != nil {
		title := s.sanitizer.Sanitize(*input.Title)
		if title == "" {
			return nil, model.NewValidationError("タイトルは必須です")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			category = model.DefaultCategory
		}
		task.Category = category
	}
	if input.Priority != nil {
		priority, err := resolvePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.DueDate != nil {
		task.DueDate = normalizeTime(input.DueDate)
	}
	if input.Reminder != nil {
		task.Reminder = normalizeTime(input.Reminder)
	}

	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	return task, nil
}

// Delete はユーザー所有のタスクを削除する。
// APIレベルで冪等ではない: 存在しないIDはTASK_NOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	deleted, err := s.taskRepo.DeleteByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError(taskID)
	}
	return nil
}

// Categories はユーザーのタスクで実際に使用中のカテゴリを返す。
// 組み込みのデフォルトカテゴリは含めない（表示側の関心事）。
func (s *Service) Categories(ctx context.Context, userID string) ([]string, error) {
	categories, err := s.taskRepo.DistinctCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	return categories, nil
}

// resolvePriority は入力の優先度文字列を検証・解決する。
// 空文字はMediumにフォールバックし、定義外の値は検証エラーとする。
func resolvePriority(p string) (model.Priority, error) {
	if strings.TrimSpace(p) == "" {
		return model.PriorityMedium, nil
	}
	priority := model.Priority(p)
	if !model.ValidPriority(priority) {
		return "", model.NewValidationError(fmt.Sprintf("優先度はLow、Medium、Highのいずれかを指定してください: %s", p))
	}
	return priority, nil
}

// normalizeTime はオプションの時刻をUTCに正規化する。
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
