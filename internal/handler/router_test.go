package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/contesthub/internal/middleware"
	"github.com/hitoshi/contesthub/internal/model"
	"github.com/hitoshi/contesthub/internal/reminder"
)

type mockPinger struct {
	err error
}

func (m mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

func newTestRouter(t *testing.T, deps *RouterDeps) http.Handler {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		ReminderRate:    rate.Limit(0.001),
		ReminderBurst:   2,
		CleanupInterval: time.Hour,
	}, discardLogger())
	t.Cleanup(rl.Stop)

	deps.Logger = discardLogger()
	deps.RateLimiter = rl
	deps.SessionFinder = mockSessionFinder{}
	deps.UserFinder = mockUserFinder{}
	if deps.AuthService == nil {
		deps.AuthService = &mockAuthService{}
	}
	if deps.ContestService == nil {
		deps.ContestService = &mockContestService{}
	}
	if deps.ReminderService == nil {
		deps.ReminderService = &mockReminderService{}
	}
	if deps.UserService == nil {
		deps.UserService = &mockUserService{}
	}
	if deps.Sweeper == nil {
		deps.Sweeper = &mockSweeper{}
	}
	return NewRouter(deps)
}

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"})
	return req
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		DB:             mockPinger{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("# metrics")) }),
		ContestService: &mockContestService{contests: sampleContests()},
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/contests", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("セキュリティヘッダーが全ルートに付与されるべきです")
			}
		})
	}
}

func TestRouter_HealthUnavailable(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{DB: mockPinger{err: errors.New("connection refused")}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{})

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/reminders"},
		{http.MethodGet, "/api/reminders/status?contest_id=1"},
		{http.MethodPost, "/api/reminders"},
		{http.MethodPut, "/api/reminders/rem-1"},
		{http.MethodDelete, "/api/reminders/rem-1"},
		{http.MethodDelete, "/api/users/me"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestRouter_ReminderFlowWithSession(t *testing.T) {
	var ownerEmail string
	svc := &mockReminderService{
		createFn: func(ctx context.Context, userEmail string, in reminder.CreateInput) (*model.Reminder, error) {
			ownerEmail = userEmail
			return sampleReminder(), nil
		},
		deleteFn: func(ctx context.Context, userEmail, id string) error {
			if id != "rem-1" {
				return model.NewReminderNotFoundError(id)
			}
			return nil
		},
	}
	router := newTestRouter(t, &RouterDeps{ReminderService: svc})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(http.MethodPost, "/api/reminders", `{"contest_id":101}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", w.Code)
	}
	if ownerEmail != "alice@example.com" {
		t.Errorf("owner = %q, セッションのユーザーのメールアドレスであるべきです", ownerEmail)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(http.MethodDelete, "/api/reminders/rem-1", ""))
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(http.MethodDelete, "/api/reminders/unknown", ""))
	if w.Code != http.StatusNotFound {
		t.Errorf("DELETE unknown status = %d, want 404", w.Code)
	}
}

func TestRouter_ReminderCreationRateLimited(t *testing.T) {
	svc := &mockReminderService{
		createFn: func(ctx context.Context, userEmail string, in reminder.CreateInput) (*model.Reminder, error) {
			return sampleReminder(), nil
		},
	}
	router := newTestRouter(t, &RouterDeps{ReminderService: svc})

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, sessionRequest(http.MethodPost, "/api/reminders", `{"contest_id":101}`))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [201 201 429]", codes)
	}

	// 一覧取得は登録専用の制限を受けない
	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(http.MethodGet, "/api/reminders", ""))
	if w.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", w.Code)
	}
}

func TestRouter_WithdrawClearsCookie(t *testing.T) {
	var withdrawn string
	router := newTestRouter(t, &RouterDeps{
		UserService: &mockUserService{
			withdrawFn: func(ctx context.Context, userID string) error {
				withdrawn = userID
				return nil
			},
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(http.MethodDelete, "/api/users/me", ""))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if withdrawn != "user-1" {
		t.Errorf("withdrawn = %q, want user-1", withdrawn)
	}
	if c := findCookie(w.Result(), middleware.SessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Errorf("セッションCookieが削除されるべきです: %+v", c)
	}
}

func TestRouter_CronSweep(t *testing.T) {
	sweeper := &mockSweeper{result: reminder.SweepResult{Pending: 5, Due: 2, Sent: 1, Failed: 1}}

	tests := []struct {
		name      string
		secret    string
		auth      string
		want      int
		wantCalls int
	}{
		{"正しいシークレット", "s3cret", "Bearer s3cret", http.StatusOK, 1},
		{"誤ったシークレット", "s3cret", "Bearer wrong", http.StatusUnauthorized, 0},
		{"シークレット未設定", "", "Bearer ", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweeper.calls = 0
			router := newTestRouter(t, &RouterDeps{Sweeper: sweeper, CronSecret: tt.secret})

			req := httptest.NewRequest(http.MethodPost, "/api/cron/reminders", nil)
			req.Header.Set("Authorization", tt.auth)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if sweeper.calls != tt.wantCalls {
				t.Errorf("sweep calls = %d, want %d", sweeper.calls, tt.wantCalls)
			}
			if tt.want == http.StatusOK && !strings.Contains(w.Body.String(), `"sent":1`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}
