// Package sweep はリマインダースイープのバックグラウンド実行を提供する。
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/contesthub/internal/reminder"
)

// Sweeper はスイープ1回分の実行インターフェース。
type Sweeper interface {
	Sweep(ctx context.Context) reminder.SweepResult
}

// Scheduler は一定間隔でスイープを実行する。
// 前回のスイープが終わるまで次のスイープは開始しないため、スイープが重なることはない。
type Scheduler struct {
	sweeper Sweeper
	logger  *slog.Logger
}

// NewScheduler はSchedulerを生成する。
func NewScheduler(sweeper Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{sweeper: sweeper, logger: logger}
}

// Start は起動直後に1回スイープを実行し、その後interval毎に繰り返す。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("スイープスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("スイープスケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce はスイープを1回実行して結果を返す。
// 集計値のログはSweeperが出力するため、ここでは所要時間のみDebugで記録する。
func (s *Scheduler) RunOnce(ctx context.Context) reminder.SweepResult {
	start := time.Now()
	result := s.sweeper.Sweep(ctx)

	s.logger.Debug("スイープを実行しました",
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return result
}
