package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contesthub/internal/middleware"
	"github.com/hitoshi/contesthub/internal/model"
	"github.com/hitoshi/contesthub/internal/reminder"
)

// ReminderServiceInterface はリマインダーハンドラーが必要とするサービスインターフェース。
type ReminderServiceInterface interface {
	Create(ctx context.Context, userEmail string, in reminder.CreateInput) (*model.Reminder, error)
	List(ctx context.Context, userEmail string) ([]*model.Reminder, error)
	IsNotified(ctx context.Context, userEmail string, contestID int64) (bool, error)
	UpdateNotifyBefore(ctx context.Context, userEmail, id, notifyBefore string) (*model.Reminder, error)
	Delete(ctx context.Context, userEmail, id string) error
}

// ReminderHandler はリマインダーのHTTPハンドラー。
// 所有者はセッションから解決したメールアドレスで判定する。
type ReminderHandler struct {
	service ReminderServiceInterface
}

// NewReminderHandler はReminderHandlerを生成する。
func NewReminderHandler(service ReminderServiceInterface) *ReminderHandler {
	return &ReminderHandler{service: service}
}

type createReminderRequest struct {
	ContestID    int64      `json:"contest_id"`
	ContestName  string     `json:"contest_name"`
	ContestURL   string     `json:"contest_url"`
	Platform     string     `json:"platform"`
	ContestDate  string     `json:"contest_date"`
	ContestTime  string     `json:"contest_time"`
	ContestStart *time.Time `json:"contest_start"`
	NotifyBefore string     `json:"notify_before"`
}

type updateReminderRequest struct {
	NotifyBefore string `json:"notify_before"`
}

type reminderResponse struct {
	ID           string     `json:"id"`
	ContestID    int64      `json:"contest_id"`
	ContestName  string     `json:"contest_name"`
	ContestURL   string     `json:"contest_url"`
	ContestDate  string     `json:"contest_date"`
	ContestTime  string     `json:"contest_time"`
	ContestStart *time.Time `json:"contest_start,omitempty"`
	Platform     string     `json:"platform"`
	NotifyBefore string     `json:"notify_before"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toReminderResponse(r *model.Reminder) reminderResponse {
	return reminderResponse{
		ID:           r.ID,
		ContestID:    r.ContestID,
		ContestName:  r.ContestName,
		ContestURL:   r.ContestURL,
		ContestDate:  r.ContestDate,
		ContestTime:  r.ContestTime,
		ContestStart: r.ContestStartAt,
		Platform:     r.Platform,
		NotifyBefore: r.NotifyBefore,
		ReminderSent: r.ReminderSent,
		CreatedAt:    r.CreatedAt,
	}
}

// userEmail はコンテキストからメールアドレスを取得する。取得できない場合は401を書き込む。
func userEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, err := middleware.UserEmailFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return "", false
	}
	return email, true
}

// List はユーザーのリマインダーを新しい順に返す。
// GET /api/reminders
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	email, ok := userEmail(w, r)
	if !ok {
		return
	}

	reminders, err := h.service.List(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]reminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		resp = append(resp, toReminderResponse(rem))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": resp})
}

// Status は指定コンテストのリマインダー登録有無を返す。
// GET /api/reminders/status?contest_id=
func (h *ReminderHandler) Status(w http.ResponseWriter, r *http.Request) {
	email, ok := userEmail(w, r)
	if !ok {
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("contest_id"))
	if raw == "" {
		handleServiceError(w, model.NewMissingFieldsError([]string{"contest_id"}))
		return
	}
	contestID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		handleServiceError(w, model.NewInvalidFilterError("contest_id は整数で指定してください"))
		return
	}

	notified, err := h.service.IsNotified(r.Context(), email, contestID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_notified": notified})
}

// Create はリマインダーを登録する。
// POST /api/reminders
// 同一コンテストが登録済みの場合は409を返す。
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := userEmail(w, r)
	if !ok {
		return
	}

	var req createReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rem, err := h.service.Create(r.Context(), email, reminder.CreateInput{
		ContestID:    req.ContestID,
		ContestName:  req.ContestName,
		ContestURL:   req.ContestURL,
		Platform:     req.Platform,
		ContestDate:  req.ContestDate,
		ContestTime:  req.ContestTime,
		ContestStart: req.ContestStart,
		NotifyBefore: req.NotifyBefore,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReminderResponse(rem))
}

// Update は通知タイミングを変更する。
// PUT /api/reminders/{id}
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := userEmail(w, r)
	if !ok {
		return
	}

	var req updateReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rem, err := h.service.UpdateNotifyBefore(r.Context(), email, chi.URLParam(r, "id"), req.NotifyBefore)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(rem))
}

// Delete はリマインダーを削除する。
// DELETE /api/reminders/{id}
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := userEmail(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
