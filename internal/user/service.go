// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/contesthub/internal/model"
	"github.com/hitoshi/contesthub/internal/repository"
)

// ReminderDeleter はリマインダーの一括削除インターフェース。
type ReminderDeleter interface {
	DeleteByUserEmail(ctx context.Context, userEmail string) error
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo        repository.UserRepository
	sessionRepo     repository.SessionRepository
	reminderDeleter ReminderDeleter
	logger          *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	reminderDeleter ReminderDeleter,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		reminderDeleter: reminderDeleter,
		logger:          logger,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: reminders → sessions → user
// リマインダーはメールアドレスで紐づくため、ユーザー削除より先に消す。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	s.logger.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. リマインダーを削除
	if s.reminderDeleter != nil {
		if err := s.reminderDeleter.DeleteByUserEmail(ctx, user.Email); err != nil {
			return fmt.Errorf("リマインダーの削除に失敗しました: %w", err)
		}
	}

	// 2. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 3. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	s.logger.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
