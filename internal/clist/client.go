// Package clist はCLISTのコンテスト一覧APIクライアントと一覧キャッシュを提供する。
package clist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/contesthub/internal/model"
)

const (
	// DefaultBaseURL はCLISTのコンテスト一覧APIのエンドポイント。
	DefaultBaseURL = "https://clist.by/api/v4/contest/"
	// DefaultLimit は1回の取得件数の既定値。
	DefaultLimit = 150
	// maxResponseSize はレスポンスボディの上限。
	maxResponseSize = 10 * 1024 * 1024

	endAfterLayout = "2006-01-02T15:04:05"
)

// ErrMissingCredentials はCLISTの認証情報が設定されていない場合のエラー。
var ErrMissingCredentials = errors.New("clist credentials are not configured")

// Config はCLISTクライアントの設定。
type Config struct {
	BaseURL  string
	Username string
	APIKey   string
	Limit    int
}

// Client はCLISTのコンテスト一覧APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	username   string
	apiKey     string
	limit      int
}

// NewClient はClientを生成する。BaseURLとLimitが未指定の場合は既定値を使う。
func NewClient(httpClient *http.Client, cfg Config, logger *slog.Logger) *Client {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = DefaultBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		username:   cfg.Username,
		apiKey:     cfg.APIKey,
		limit:      limit,
	}
}

// listResponse はコンテスト一覧APIのレスポンス。
type listResponse struct {
	Objects []model.RawContest `json:"objects"`
}

// ListUpcoming は終了時刻が endAfter より後のコンテストを開始時刻順に取得する。
func (c *Client) ListUpcoming(ctx context.Context, endAfter time.Time) ([]model.RawContest, error) {
	if c.username == "" || c.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("username", c.username)
	q.Set("api_key", c.apiKey)
	q.Set("order_by", "start")
	q.Set("format", "json")
	q.Set("end__gt", endAfter.UTC().Format(endAfterLayout))
	q.Set("limit", strconv.Itoa(c.limit))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ContestHub/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// URLにAPIキーが含まれるためエラー文字列はそのまま返さない
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("CLIST APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("CLIST APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("CLIST APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result listResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if result.Objects == nil {
		result.Objects = []model.RawContest{}
	}

	c.logger.Debug("CLISTからコンテスト一覧を取得しました",
		slog.Int("count", len(result.Objects)),
	)
	return result.Objects, nil
}
