package clist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestClient(t *testing.T, server *httptest.Server, cfg Config) (*Client, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if cfg.Username == "" {
		cfg.Username = "alice"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "secret-key"
	}
	cfg.BaseURL = server.URL + "/api/v4/contest/"
	return NewClient(server.Client(), cfg, newTestLogger(&buf)), &buf
}

const sampleResponse = `{
  "meta": {"limit": 150, "offset": 0},
  "objects": [
    {
      "id": 5001,
      "resource": "codeforces.com",
      "event": "Codeforces Round 999 (Div. 2)",
      "start": "2026-10-19T14:35:00",
      "end": "2026-10-19T16:35:00",
      "duration": 7200,
      "href": "https://codeforces.com/contests/2050",
      "n_problems": 6
    },
    {
      "id": 5002,
      "resource": "atcoder.jp",
      "event": "AtCoder Beginner Contest 400",
      "start": "2026-10-20T12:00:00",
      "end": "2026-10-20T13:40:00",
      "duration": 6000,
      "href": "atcoder.jp/contests/abc400",
      "n_problems": null
    }
  ]
}`

func TestClient_ListUpcoming_Success(t *testing.T) {
	endAfter := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("HTTPメソッド = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/v4/contest/" {
			t.Errorf("パス = %s", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"username": "alice",
			"api_key":  "secret-key",
			"order_by": "start",
			"format":   "json",
			"end__gt":  "2026-10-18T12:00:00",
			"limit":    "150",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("クエリ %s = %q, want %q", k, got, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server, Config{})
	listings, err := c.ListUpcoming(context.Background(), endAfter)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("件数 = %d, want 2", len(listings))
	}

	first := listings[0]
	if first.ID != 5001 || first.Resource != "codeforces.com" || first.DurationSeconds != 7200 {
		t.Errorf("1件目 = %+v", first)
	}
	if first.ProblemCount == nil || *first.ProblemCount != 6 {
		t.Errorf("ProblemCount = %v, want 6", first.ProblemCount)
	}
	if listings[1].ProblemCount != nil {
		t.Errorf("n_problems が null の場合は nil であるべきです: %v", *listings[1].ProblemCount)
	}
}

func TestClient_ListUpcoming_CustomLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit = %q, want 20", got)
		}
		w.Write([]byte(`{"objects": []}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server, Config{Limit: 20})
	listings, err := c.ListUpcoming(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if listings == nil || len(listings) != 0 {
		t.Errorf("空の一覧を返すべきです: %v", listings)
	}
}

func TestClient_ListUpcoming_MissingCredentials(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), Config{BaseURL: server.URL, Username: "alice"}, newTestLogger(&buf))

	_, err := c.ListUpcoming(context.Background(), time.Now())
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("ErrMissingCredentials が返されるべきです: %v", err)
	}
	if called {
		t.Error("認証情報がない場合はリクエストを送信すべきではありません")
	}
}

func TestClient_ListUpcoming_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c, buf := newTestClient(t, server, Config{})
	_, err := c.ListUpcoming(context.Background(), time.Now())
	if err == nil {
		t.Fatal("エラーが返されるべきです")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("エラーにステータスが含まれるべきです: %v", err)
	}
	if strings.Contains(buf.String(), "secret-key") {
		t.Error("ログにAPIキーを含めるべきではありません")
	}
}

func TestClient_ListUpcoming_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objects": [`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server, Config{})
	if _, err := c.ListUpcoming(context.Background(), time.Now()); err == nil {
		t.Fatal("不正なJSONはエラーになるべきです")
	}
}

func TestClient_ListUpcoming_TransportErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, _ := newTestClient(t, server, Config{})
	server.Close()

	_, err := c.ListUpcoming(context.Background(), time.Now())
	if err == nil {
		t.Fatal("接続エラーが返されるべきです")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("エラーにAPIキーを含めるべきではありません: %v", err)
	}
}

func TestClient_ListUpcoming_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c, _ := newTestClient(t, server, Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.ListUpcoming(ctx, time.Now()); err == nil {
		t.Fatal("タイムアウトでエラーになるべきです")
	}
}
