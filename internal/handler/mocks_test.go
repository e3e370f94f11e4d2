package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/contesthub/internal/auth"
	"github.com/hitoshi/contesthub/internal/middleware"
	"github.com/hitoshi/contesthub/internal/model"
	"github.com/hitoshi/contesthub/internal/reminder"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn         func(ctx context.Context, in auth.SignupInput) (*model.User, *model.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Signup(ctx context.Context, in auth.SignupInput) (*model.User, *model.Session, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

type mockContestService struct {
	contests []model.Contest
}

func (m *mockContestService) ListContests(ctx context.Context) []model.Contest {
	return m.contests
}

type mockReminderService struct {
	createFn     func(ctx context.Context, userEmail string, in reminder.CreateInput) (*model.Reminder, error)
	listFn       func(ctx context.Context, userEmail string) ([]*model.Reminder, error)
	isNotifiedFn func(ctx context.Context, userEmail string, contestID int64) (bool, error)
	updateFn     func(ctx context.Context, userEmail, id, notifyBefore string) (*model.Reminder, error)
	deleteFn     func(ctx context.Context, userEmail, id string) error
}

func (m *mockReminderService) Create(ctx context.Context, userEmail string, in reminder.CreateInput) (*model.Reminder, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userEmail, in)
	}
	return nil, nil
}

func (m *mockReminderService) List(ctx context.Context, userEmail string) ([]*model.Reminder, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userEmail)
	}
	return []*model.Reminder{}, nil
}

func (m *mockReminderService) IsNotified(ctx context.Context, userEmail string, contestID int64) (bool, error) {
	if m.isNotifiedFn != nil {
		return m.isNotifiedFn(ctx, userEmail, contestID)
	}
	return false, nil
}

func (m *mockReminderService) UpdateNotifyBefore(ctx context.Context, userEmail, id, notifyBefore string) (*model.Reminder, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userEmail, id, notifyBefore)
	}
	return nil, nil
}

func (m *mockReminderService) Delete(ctx context.Context, userEmail, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userEmail, id)
	}
	return nil
}

type mockUserService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

type mockSweeper struct {
	calls  int
	result reminder.SweepResult
}

func (m *mockSweeper) Sweep(ctx context.Context) reminder.SweepResult {
	m.calls++
	return m.result
}

type mockSessionFinder struct{}

func (mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if id == "valid-session" {
		return &model.Session{ID: id, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return nil, nil
}

type mockUserFinder struct{}

func (mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Email: "alice@example.com", Name: "Alice"}, nil
}

// --- compile-time interface checks ---
var _ AuthServiceInterface = (*mockAuthService)(nil)
var _ ContestServiceInterface = (*mockContestService)(nil)
var _ ReminderServiceInterface = (*mockReminderService)(nil)
var _ UserServiceInterface = (*mockUserService)(nil)
var _ Sweeper = (*mockSweeper)(nil)

// --- ヘルパー ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// withUser はセッションミドルウェア通過後と同じコンテキストを持つリクエストを返す。
func withUser(req *http.Request) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), "user-1", "alice@example.com"))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewReader(b)
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v\nraw: %s", err, w.Body.String())
	}
	return body
}
