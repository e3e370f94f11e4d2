package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/contesthub/internal/model"
	"github.com/hitoshi/contesthub/internal/repository"
)

// Notifier はリマインダー通知（メール送信）のインターフェース。
type Notifier interface {
	NotifyReminder(ctx context.Context, r *model.Reminder) error
}

// SweepMetrics はスイープ結果の計測インターフェース。
type SweepMetrics interface {
	RecordSweep(result SweepResult, duration time.Duration)
}

// SweepResult は1回のスイープの集計。
type SweepResult struct {
	Pending int // 未送信として読み込んだ件数
	Due     int // 送信時間帯に入っていた件数
	Sent    int // 送信と送信済み記録の両方に成功した件数
	Skipped int // 開始時刻を復元できずスキップした件数
	Failed  int // 送信または送信済み記録に失敗した件数
}

// SweeperConfig はスイープの設定。
type SweeperConfig struct {
	// MaxConcurrent は同時に処理するリマインダー数。1以下の場合は逐次処理となる。
	MaxConcurrent int
	// DispatchTimeout は1件の通知送信に許す時間。0以下の場合は制限しない。
	DispatchTimeout time.Duration
	// Location は旧データの表示用日付・時刻を解釈するタイムゾーン。nilの場合はUTC。
	Location *time.Location
}

// Sweeper は未送信リマインダーを走査し、送信時間帯に入ったものを通知して送信済みにする。
// 配信保証は at-least-once であり、送信後の記録に失敗したものは次回のスイープで再送され得る。
type Sweeper struct {
	repo     repository.ReminderRepository
	notifier Notifier
	metrics  SweepMetrics
	logger   *slog.Logger
	config   SweeperConfig
	now      func() time.Time
}

// NewSweeper はSweeperを生成する。metricsはnilでもよい。
func NewSweeper(
	repo repository.ReminderRepository,
	notifier Notifier,
	metrics SweepMetrics,
	logger *slog.Logger,
	config SweeperConfig,
) *Sweeper {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Sweeper{
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

// outcome は1件のリマインダーの処理結果。
type outcome int

const (
	outcomeNotDue outcome = iota
	outcomeSkipped
	outcomeSent
	outcomeFailed
)

// Sweep は未送信リマインダーを1回走査する。
// 個々のリマインダーの失敗はログに記録して他のリマインダーの処理を続け、エラーは返さない。
func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	start := time.Now()
	var result SweepResult

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("未送信リマインダーの取得に失敗しました",
			slog.String("error", err.Error()),
		)
		s.record(result, start)
		return result
	}
	result.Pending = len(pending)

	if len(pending) == 0 {
		s.logger.Info("未送信のリマインダーはありません")
		s.record(result, start)
		return result
	}

	now := s.now()

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.config.MaxConcurrent)

	for _, r := range pending {
		g.Go(func() error {
			o := s.process(ctx, r, now)

			mu.Lock()
			defer mu.Unlock()
			switch o {
			case outcomeSkipped:
				result.Skipped++
			case outcomeSent:
				result.Due++
				result.Sent++
			case outcomeFailed:
				result.Due++
				result.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("リマインダースイープが完了しました",
		slog.Int("pending", result.Pending),
		slog.Int("due", result.Due),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	s.record(result, start)
	return result
}

// process は1件のリマインダーについて送信判定・送信・送信済み記録を行う。
func (s *Sweeper) process(ctx context.Context, r *model.Reminder, now time.Time) outcome {
	startAt, ok := s.contestStart(r)
	if !ok {
		return outcomeSkipped
	}

	offset := ParseOffset(r.NotifyBefore, s.logger.With(slog.String("reminder_id", r.ID)))
	from, to := FireWindowFor(startAt, offset)
	if !InWindow(now, from, to) {
		return outcomeNotDue
	}

	s.logger.Info("リマインダーを送信します",
		slog.String("reminder_id", r.ID),
		slog.Int64("contest_id", r.ContestID),
	)

	sendCtx := ctx
	if s.config.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.config.DispatchTimeout)
		defer cancel()
	}

	if err := s.notifier.NotifyReminder(sendCtx, r); err != nil {
		s.logger.Error("リマインダーの送信に失敗しました。次回のスイープで再試行します",
			slog.String("reminder_id", r.ID),
			slog.String("error", err.Error()),
		)
		return outcomeFailed
	}

	if err := s.repo.MarkSent(ctx, r.ID); err != nil {
		s.logger.Error("送信済みの記録に失敗しました。次回のスイープで重複送信される可能性があります",
			slog.String("reminder_id", r.ID),
			slog.String("error", err.Error()),
		)
		return outcomeFailed
	}

	return outcomeSent
}

// contestStart はリマインダーのコンテスト開始時刻を返す。
// 開始時刻が保存されていない旧データは表示用の日付・時刻から復元する。
func (s *Sweeper) contestStart(r *model.Reminder) (time.Time, bool) {
	if r.ContestStartAt != nil && !r.ContestStartAt.IsZero() {
		return *r.ContestStartAt, true
	}

	t, err := ParseDisplay(r.ContestDate, r.ContestTime, s.config.Location)
	if err != nil {
		s.logger.Warn("コンテスト開始時刻を解釈できないためスキップします",
			slog.String("reminder_id", r.ID),
			slog.String("contest_date", r.ContestDate),
			slog.String("contest_time", r.ContestTime),
		)
		return time.Time{}, false
	}
	return t, true
}

func (s *Sweeper) record(result SweepResult, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordSweep(result, time.Since(start))
	}
}
