package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/contesthub/internal/contest"
	"github.com/hitoshi/contesthub/internal/model"
)

// ContestServiceInterface はコンテストハンドラーが必要とするサービスインターフェース。
type ContestServiceInterface interface {
	ListContests(ctx context.Context) []model.Contest
}

// ContestHandler はコンテスト一覧のHTTPハンドラー。
type ContestHandler struct {
	service ContestServiceInterface
}

// NewContestHandler はContestHandlerを生成する。
func NewContestHandler(service ContestServiceInterface) *ContestHandler {
	return &ContestHandler{service: service}
}

type contestResponse struct {
	ID                int64     `json:"id"`
	Platform          string    `json:"platform"`
	PlatformLogo      string    `json:"platform_logo"`
	Title             string    `json:"title"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DurationSeconds   int64     `json:"duration_seconds"`
	Duration          string    `json:"duration"`
	Difficulty        string    `json:"difficulty"`
	Status            string    `json:"status"`
	ProblemCount      int       `json:"problem_count"`
	URL               string    `json:"url"`
	IsHiringChallenge bool      `json:"is_hiring_challenge"`
}

type contestListResponse struct {
	Contests   []contestResponse `json:"contests"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

func toContestResponse(c model.Contest) contestResponse {
	return contestResponse{
		ID:                c.ID,
		Platform:          c.Platform,
		PlatformLogo:      c.PlatformLogo,
		Title:             c.Title,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		DurationSeconds:   c.DurationSeconds,
		Duration:          c.Duration,
		Difficulty:        string(c.Difficulty),
		Status:            string(c.Status),
		ProblemCount:      c.ProblemCount,
		URL:               c.URL,
		IsHiringChallenge: c.IsHiringChallenge,
	}
}

// ListContests は正規化済みコンテスト一覧を絞り込み・ページングして返す。
// GET /api/contests?q=&platform=&difficulty=&status=&page=&per_page=
// 一覧の取得に失敗した場合も空の一覧を200で返す。
func (h *ContestHandler) ListContests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := positiveIntParam(query, "page", 1)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	perPage, err := positiveIntParam(query, "per_page", contest.DefaultPerPage)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filter := contest.Filter{
		Query:        query.Get("q"),
		Platforms:    listParam(query, "platform"),
		Difficulties: listParam(query, "difficulty"),
		Statuses:     listParam(query, "status"),
	}

	contests := filter.Apply(h.service.ListContests(r.Context()))
	p := contest.Paginate(contests, page, perPage)

	resp := contestListResponse{
		Contests:   make([]contestResponse, 0, len(p.Items)),
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
	for _, c := range p.Items {
		resp.Contests = append(resp.Contests, toContestResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// positiveIntParam は正の整数のクエリパラメータを読み取る。未指定ならdefを返す。
func positiveIntParam(query url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, model.NewInvalidFilterError(name + " は正の整数で指定してください")
	}
	return n, nil
}

// listParam は繰り返し指定とカンマ区切りの両方を受け付けて値の一覧を返す。
func listParam(query url.Values, name string) []string {
	var values []string
	for _, v := range query[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
