package contest

import (
	"time"

	"github.com/hitoshi/contesthub/internal/model"
)

// longContestThreshold を超える開催期間のコンテストは開催中でも ongoing と扱う。
const longContestThreshold = 24 * time.Hour

// ClassifyStatus は開始・終了時刻と開催期間（秒）から、nowにおける状態を返す。
func ClassifyStatus(start, end time.Time, durationSeconds int64, now time.Time) model.ContestStatus {
	if now.After(end) {
		return model.ContestStatusEnded
	}
	if !now.Before(start) {
		if durationSeconds > int64(longContestThreshold/time.Second) {
			return model.ContestStatusOngoing
		}
		return model.ContestStatusLive
	}
	return model.ContestStatusUpcoming
}
