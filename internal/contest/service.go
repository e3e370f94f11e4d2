package contest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/contesthub/internal/model"
)

// ListingSource は外部のコンテスト一覧ソースのインターフェース。
// endAfter より後に終了するコンテストを開始時刻順で返す。
type ListingSource interface {
	ListUpcoming(ctx context.Context, endAfter time.Time) ([]model.RawContest, error)
}

// TitleSanitizer はコンテスト名をプレーンテキストに正規化するインターフェース。
type TitleSanitizer interface {
	SanitizeText(s string) string
}

// ListingMetrics はコンテスト一覧取得の計測インターフェース。
type ListingMetrics interface {
	RecordListingFetchSuccess(count int, duration time.Duration)
	RecordListingFetchFailure()
}

// Service はコンテスト一覧の取得・正規化・並べ替えを行う。
// 共有する可変状態を持たないため、複数のゴルーチンから同時に呼び出せる。
type Service struct {
	source    ListingSource
	sanitizer TitleSanitizer
	metrics   ListingMetrics
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewService はServiceを生成する。
// timeoutが0以下の場合、取得処理は呼び出し元のコンテキストのみで制限される。
// sanitizer と metrics はnilでもよい。
func NewService(
	source ListingSource,
	sanitizer TitleSanitizer,
	metrics ListingMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) *Service {
	return &Service{
		source:    source,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// ListContests は外部ソースから一覧を取得し、正規化して状態・開始時刻順に並べて返す。
// 取得に失敗した場合はエラーを返さず、ログを出力して空のスライスを返す。
func (s *Service) ListContests(ctx context.Context) []model.Contest {
	now := s.now()

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raws, err := s.source.ListUpcoming(fetchCtx, now)
	if err != nil {
		s.logger.Error("コンテスト一覧の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordListingFetchFailure()
		}
		return []model.Contest{}
	}

	contests := make([]model.Contest, 0, len(raws))
	for _, raw := range raws {
		c, err := s.normalize(raw, now)
		if err != nil {
			s.logger.Warn("コンテストの正規化に失敗したためスキップします",
				slog.Int64("contest_id", raw.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		contests = append(contests, c)
	}

	SortContests(contests)

	if s.metrics != nil {
		s.metrics.RecordListingFetchSuccess(len(contests), time.Since(start))
	}
	return contests
}

// normalize は1件の未加工リスティングをContestに変換する。
func (s *Service) normalize(raw model.RawContest, now time.Time) (model.Contest, error) {
	startAt, err := parseListingTime(raw.Start)
	if err != nil {
		return model.Contest{}, fmt.Errorf("invalid start: %w", err)
	}
	endAt, err := parseListingTime(raw.End)
	if err != nil {
		return model.Contest{}, fmt.Errorf("invalid end: %w", err)
	}

	title := raw.Event
	if s.sanitizer != nil {
		title = s.sanitizer.SanitizeText(title)
	}

	platform := ClassifyPlatform(raw.Resource)

	problems := 0
	if raw.ProblemCount != nil && *raw.ProblemCount > 0 {
		problems = *raw.ProblemCount
	}

	return model.Contest{
		ID:                raw.ID,
		Platform:          platform.Name,
		PlatformLogo:      platform.Logo,
		Title:             title,
		StartTime:         startAt,
		EndTime:           endAt,
		DurationSeconds:   raw.DurationSeconds,
		Duration:          FormatDuration(raw.DurationSeconds),
		Difficulty:        InferDifficulty(platform.Name, title),
		Status:            ClassifyStatus(startAt, endAt, raw.DurationSeconds, now),
		ProblemCount:      problems,
		URL:               NormalizeURL(raw.Href),
		IsHiringChallenge: IsHiringChallenge(title, platform.Name),
	}, nil
}

// SortContests は状態の優先度、開始時刻の昇順で安定ソートする。
// キーが等しい要素は元の相対順序を保つ。
func SortContests(contests []model.Contest) {
	sort.SliceStable(contests, func(i, j int) bool {
		ri, rj := contests[i].Status.Rank(), contests[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return contests[i].StartTime.Before(contests[j].StartTime)
	})
}

// NormalizeURL はスキームのないURLに "https://" を付与する。
// 空の場合は "#" を返す。
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "#"
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

// listingTimeLayouts はリスティングの時刻表記として受け付ける書式。
// タイムゾーン表記のない時刻はUTCとして解釈する。
var listingTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseListingTime(s string) (time.Time, error) {
	for _, layout := range listingTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}
