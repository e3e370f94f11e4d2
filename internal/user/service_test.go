package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/hitoshi/contesthub/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFn(ctx, id)
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return m.deleteByUserIDFn(ctx, userID)
}

type mockReminderDeleter struct {
	deleteByUserEmailFn func(ctx context.Context, userEmail string) error
}

func (m *mockReminderDeleter) DeleteByUserEmail(ctx context.Context, userEmail string) error {
	return m.deleteByUserEmailFn(ctx, userEmail)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- テスト ---

// TestService_Withdraw は退会処理が全関連データを順に削除することを検証する。
func TestService_Withdraw(t *testing.T) {
	var calls []string

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "test@example.com"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			calls = append(calls, "user:"+id)
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			calls = append(calls, "sessions:"+userID)
			return nil
		},
	}
	reminders := &mockReminderDeleter{
		deleteByUserEmailFn: func(ctx context.Context, userEmail string) error {
			calls = append(calls, "reminders:"+userEmail)
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, reminders, discardLogger())

	if err := svc.Withdraw(context.Background(), "user-1"); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	want := []string{"reminders:test@example.com", "sessions:user-1", "user:user-1"}
	if !slices.Equal(calls, want) {
		t.Errorf("削除順序 = %v, want %v", calls, want)
	}
}

// TestService_Withdraw_UserNotFound は存在しないユーザーの退会がエラーになることを検証する。
func TestService_Withdraw_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := NewService(userRepo, nil, nil, discardLogger())

	err := svc.Withdraw(context.Background(), "nonexistent-user")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("USER_NOT_FOUND が返されるべきです: %v", err)
	}
}

// TestService_Withdraw_StopsOnReminderError はリマインダー削除失敗時にユーザーを残すことを検証する。
func TestService_Withdraw_StopsOnReminderError(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "test@example.com"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			t.Error("リマインダー削除に失敗した場合、ユーザーを削除すべきではありません")
			return nil
		},
	}
	reminders := &mockReminderDeleter{
		deleteByUserEmailFn: func(ctx context.Context, userEmail string) error {
			return errors.New("db down")
		},
	}

	svc := NewService(userRepo, nil, reminders, discardLogger())

	if err := svc.Withdraw(context.Background(), "user-1"); err == nil {
		t.Fatal("エラーが返されるべきです")
	}
}
