package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(t *testing.T, generalBurst, reminderBurst int) (*RateLimiter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001),
		GeneralBurst:    generalBurst,
		ReminderRate:    rate.Limit(0.001),
		ReminderBurst:   reminderBurst,
		CleanupInterval: time.Hour,
	}, newTestLogger(&buf))
	t.Cleanup(rl.Stop)
	return rl, &buf
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func userRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/reminders", nil)
	return req.WithContext(ContextWithUser(req.Context(), userID, userID+"@example.com"))
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.GeneralBurst != 120 || cfg.ReminderBurst != 20 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.GeneralRate != rate.Limit(2) {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
}

func TestRateLimiter_GeneralPerUser(t *testing.T) {
	rl, buf := newTestRateLimiter(t, 2, 1)
	handler := rl.GeneralMiddleware()(okHandler())

	for i := range 2 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, userRequest("alice"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, userRequest("alice"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After が設定されるべきです")
	}
	if body := decodeErrorBody(t, w.Body); body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q", body.Code)
	}
	if !strings.Contains(buf.String(), "rate limit exceeded") {
		t.Errorf("警告ログが出力されるべきです: %s", buf.String())
	}

	// 別ユーザーは独立に制限される
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, userRequest("bob"))
	if w.Code != http.StatusOK {
		t.Errorf("別ユーザーの status = %d, want 200", w.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestRateLimiter_AnonymousKeyedByIP(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, 1)
	handler := rl.GeneralMiddleware()(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/contests", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("198.51.100.1:1234"); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if code := send("198.51.100.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("同一IPはポートが違っても同じ制限を受けるべきです: %d", code)
	}
	if code := send("198.51.100.2:1234"); code != http.StatusOK {
		t.Errorf("別IPの status = %d, want 200", code)
	}
}

func TestRateLimiter_ReminderCreationIndependent(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 10, 1)
	general := rl.GeneralMiddleware()(okHandler())
	creation := rl.ReminderCreationMiddleware()(okHandler())

	w := httptest.NewRecorder()
	creation.ServeHTTP(w, userRequest("alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	w = httptest.NewRecorder()
	creation.ServeHTTP(w, userRequest("alice"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}

	w = httptest.NewRecorder()
	general.ServeHTTP(w, userRequest("alice"))
	if w.Code != http.StatusOK {
		t.Errorf("登録制限は全般制限に影響すべきではありません: %d", w.Code)
	}
	if rl.ReminderLimiterCount() != 1 {
		t.Errorf("ReminderLimiterCount = %d, want 1", rl.ReminderLimiterCount())
	}
}

func TestRateLimiter_CleanupEvictsIdleEntries(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 5, 5)
	handler := rl.GeneralMiddleware()(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), userRequest("alice"))

	rl.cleanup(time.Now())
	if rl.GeneralLimiterCount() != 1 {
		t.Errorf("アクセス直後のエントリは残るべきです: %d", rl.GeneralLimiterCount())
	}

	rl.cleanup(time.Now().Add(3 * time.Hour))
	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("期限切れエントリは削除されるべきです: %d", rl.GeneralLimiterCount())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, 1)
	rl.Stop()
	rl.Stop()
}
