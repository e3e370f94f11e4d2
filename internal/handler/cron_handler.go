package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/contesthub/internal/reminder"
)

// Sweeper はリマインダースイープを1回実行するインターフェース。
type Sweeper interface {
	Sweep(ctx context.Context) reminder.SweepResult
}

// CronHandler は外部スケジューラから呼び出されるジョブのHTTPハンドラー。
type CronHandler struct {
	sweeper Sweeper
}

// NewCronHandler はCronHandlerを生成する。
func NewCronHandler(sweeper Sweeper) *CronHandler {
	return &CronHandler{sweeper: sweeper}
}

type sweepResponse struct {
	Pending int `json:"pending"`
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SweepReminders はリマインダースイープを1回実行し、その結果を返す。
// POST /api/cron/reminders
// 個々の送信失敗はスイープ全体の失敗とせず、結果の件数に含める。
func (h *CronHandler) SweepReminders(w http.ResponseWriter, r *http.Request) {
	result := h.sweeper.Sweep(r.Context())
	writeJSON(w, http.StatusOK, sweepResponse{
		Pending: result.Pending,
		Due:     result.Due,
		Sent:    result.Sent,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
}
