package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// 全クエリがuser_idで絞り込まれ、他ユーザーのタスクには到達できない。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// nullTime はオプションのtime.TimeポインタをNULL許容のDB値に変換する。
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// scanTask は行スキャン結果をmodel.Taskに変換する。タイムスタンプはUTCに正規化する。
func scanTask(scan func(dest ...any) error) (*model.Task, error) {
	task := &model.Task{}
	var dueDate, reminder sql.NullTime
	err := scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Category, &task.Priority, &task.Completed,
		&dueDate, &reminder, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	if reminder.Valid {
		t := reminder.Time.UTC()
		task.Reminder = &t
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return task, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, category, priority,
		                    completed, due_date, reminder, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, task.UserID, task.Title, task.Description,
		task.Category, task.Priority, task.Completed,
		nullTime(task.DueDate), nullTime(task.Reminder),
		task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindByIDAndUser は指定ユーザー所有のタスクを取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresTaskRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, category, priority,
		        completed, due_date, reminder, created_at, updated_at
		 FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListByUser はユーザーのタスク一覧をフィルタ適用のうえ作成日時降順で返す。
func (r *PostgresTaskRepo) ListByUser(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	query := `SELECT id, user_id, title, description, category, priority,
	                 completed, due_date, reminder, created_at, updated_at
	          FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Update はタスクを上書き更新する。所有者の変更は行わない。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $3, description = $4, category = $5, priority = $6,
		     completed = $7, due_date = $8, reminder = $9, updated_at = $10
		 WHERE id = $1 AND user_id = $2`,
		task.ID, task.UserID, task.Title, task.Description,
		task.Category, task.Priority, task.Completed,
		nullTime(task.DueDate), nullTime(task.Reminder), task.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// DeleteByIDAndUser は指定ユーザー所有のタスクを削除する。
// 削除対象が存在した場合はtrueを返す。
func (r *PostgresTaskRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// DistinctCategories はユーザーのタスクで実際に使用中のカテゴリを昇順で返す。
func (r *PostgresTaskRepo) DistinctCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM tasks
		 WHERE user_id = $1 AND category <> ''
		 ORDER BY category ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// CountByUser はユーザーのタスク総数と完了数を返す。
func (r *PostgresTaskRepo) CountByUser(ctx context.Context, userID string) (int, int, error) {
	var total, completed int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE completed)
		 FROM tasks WHERE user_id = $1`,
		userID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, completed, nil
}

// CountDueBetween は期限が[from, to)に入るタスク数を返す（完了状態は問わない）。
func (r *PostgresTaskRepo) CountDueBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM tasks
		 WHERE user_id = $1 AND due_date >= $2 AND due_date < $3`,
		userID, from.UTC(), to.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due tasks: %w", err)
	}
	return count, nil
}

// CountDueAfterIncomplete は期限がafter以降かつ未完了のタスク数を返す。
func (r *PostgresTaskRepo) CountDueAfterIncomplete(ctx context.Context, userID string, after time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM tasks
		 WHERE user_id = $1 AND due_date >= $2 AND NOT completed`,
		userID, after.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming tasks: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
