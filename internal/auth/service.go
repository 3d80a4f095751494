// Package auth は外部IdPとのセッション交換とローカルセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskcal/internal/model"
	"github.com/hitoshi/taskcal/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// 外部プロバイダーのセッションIDをローカルの不透明セッションに交換する。
type Service struct {
	provider    SessionProvider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	provider SessionProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		provider:    provider,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// ExchangeSession は外部プロバイダーのセッションIDをローカルセッションに交換する。
// ユーザーはメールアドレスで同定し、未登録なら作成、登録済みならプロフィールを更新する。
// プロバイダーのトークンをそのまま使い回さず、必ず新しい不透明トークンを発行する。
func (s *Service) ExchangeSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error) {
	// 1. 外部プロバイダーからユーザー情報を取得
	info, err := s.provider.FetchSessionData(ctx, sessionID)
	if err != nil {
		slog.Warn("session exchange failed", slog.String("error", err.Error()))
		return nil, nil, model.NewUpstreamAuthError(err.Error())
	}

	// 2. メールアドレスで既存ユーザーを検索
	user, err := s.userRepo.FindByEmail(ctx, info.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user != nil {
		// 3a. 既存ユーザー: プロバイダー側の最新プロフィールを反映
		if user.Name != info.Name || user.Picture != info.Picture {
			if err := s.userRepo.UpdateProfile(ctx, user.ID, info.Name, info.Picture); err != nil {
				return nil, nil, fmt.Errorf("failed to update user profile: %w", err)
			}
			user.Name = info.Name
			user.Picture = info.Picture
		}
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
		)
	} else {
		// 3b. 新規ユーザーを作成
		now := time.Now().UTC()
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     info.Email,
			Name:      info.Name,
			Picture:   info.Picture,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	}

	// 4. セッションを発行
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// ResolveSession はセッショントークンから現在のユーザーを解決する。
// トークンが存在しない・期限切れの場合は未認証エラーを返す。
func (s *Service) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewUnauthenticatedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}

	return user, nil
}

// Logout はセッションを破棄する。
// 冪等: トークンが存在しなくても成功する。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
