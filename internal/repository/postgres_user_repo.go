package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/taskcal/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, email, name, picture,
	google_access_token, google_refresh_token, google_token_expiry,
	created_at, updated_at`

// scanUser は1行をmodel.Userに読み取る。タイムスタンプはUTCに正規化する。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var expiry sql.NullTime
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Picture,
		&user.GoogleAccessToken, &user.GoogleRefreshToken, &expiry,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		user.GoogleTokenExpiry = expiry.Time.UTC()
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, user.Picture,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateProfile は表示名とアイコンURLを更新する。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id, name, picture string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = $2, picture = $3, updated_at = now() WHERE id = $1`,
		id, name, picture,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// UpdateCalendarToken はGoogleカレンダー用のトークン一式を更新する。
func (r *PostgresUserRepo) UpdateCalendarToken(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	var expiryVal sql.NullTime
	if !expiry.IsZero() {
		expiryVal = sql.NullTime{Time: expiry.UTC(), Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET google_access_token = $2, google_refresh_token = $3,
		     google_token_expiry = $4, updated_at = now()
		 WHERE id = $1`,
		id, accessToken, refreshToken, expiryVal,
	)
	if err != nil {
		return fmt.Errorf("failed to update calendar token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
