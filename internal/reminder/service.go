package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/contesthub/internal/model"
	"github.com/hitoshi/contesthub/internal/repository"
)

// URLValidator はコンテストURLの安全性を検証するインターフェース。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// TextSanitizer は利用者入力のテキストをプレーンテキストに正規化するインターフェース。
type TextSanitizer interface {
	SanitizeText(s string) string
}

// CreateInput はリマインダー登録の入力。
// ContestStart が指定されない場合は ContestDate と ContestTime から開始時刻を復元する。
type CreateInput struct {
	ContestID    int64
	ContestName  string
	ContestURL   string
	Platform     string
	ContestDate  string
	ContestTime  string
	ContestStart *time.Time
	NotifyBefore string
}

// Service はリマインダーの登録・参照・更新・削除を提供する。
type Service struct {
	repo      repository.ReminderRepository
	validator URLValidator
	sanitizer TextSanitizer
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceを生成する。
// location は表示用の日付・時刻を整形・解釈するタイムゾーン。nilの場合はUTC。
func NewService(
	repo repository.ReminderRepository,
	validator URLValidator,
	sanitizer TextSanitizer,
	location *time.Location,
	logger *slog.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:      repo,
		validator: validator,
		sanitizer: sanitizer,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Create はリマインダーを登録する。
// 同一ユーザー・同一コンテストのリマインダーが既にある場合は上書きせず競合エラーを返す。
func (s *Service) Create(ctx context.Context, userEmail string, in CreateInput) (*model.Reminder, error) {
	if missing := missingFields(in); len(missing) > 0 {
		return nil, model.NewMissingFieldsError(missing)
	}

	notifyBefore := strings.TrimSpace(in.NotifyBefore)
	if notifyBefore == "" {
		notifyBefore = model.DefaultNotifyBefore
	}
	if !ValidNotifyBefore(notifyBefore) {
		return nil, model.NewInvalidNotifyBeforeError(in.NotifyBefore)
	}

	contestURL := strings.TrimSpace(in.ContestURL)
	if err := s.validateContestURL(contestURL); err != nil {
		return nil, err
	}

	startAt, date, clock, err := s.resolveSchedule(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserAndContest(ctx, userEmail, in.ContestID)
	if err != nil {
		return nil, fmt.Errorf("リマインダーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewReminderConflictError()
	}

	platform := strings.TrimSpace(in.Platform)
	if platform == "" {
		platform = model.DefaultReminderPlatform
	}

	name := strings.TrimSpace(in.ContestName)
	if s.sanitizer != nil {
		name = s.sanitizer.SanitizeText(name)
	}

	now := s.now()
	r := &model.Reminder{
		ID:             uuid.New().String(),
		UserEmail:      userEmail,
		ContestID:      in.ContestID,
		ContestName:    name,
		ContestURL:     contestURL,
		ContestDate:    date,
		ContestTime:    clock,
		ContestStartAt: &startAt,
		Platform:       platform,
		NotifyBefore:   notifyBefore,
		ReminderSent:   false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		// 事前検索と挿入の間に同時登録された場合も一意制約違反として競合を返す
		if errors.Is(err, model.ErrReminderConflict) {
			return nil, model.NewReminderConflictError()
		}
		return nil, fmt.Errorf("リマインダーの作成に失敗しました: %w", err)
	}

	s.logger.Info("リマインダーを登録しました",
		slog.String("reminder_id", r.ID),
		slog.Int64("contest_id", r.ContestID),
		slog.String("notify_before", r.NotifyBefore),
	)
	return r, nil
}

// List はユーザーのリマインダーを新しい順に返す。
func (s *Service) List(ctx context.Context, userEmail string) ([]*model.Reminder, error) {
	reminders, err := s.repo.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("リマインダー一覧の取得に失敗しました: %w", err)
	}
	if reminders == nil {
		reminders = []*model.Reminder{}
	}
	return reminders, nil
}

// IsNotified はユーザーが指定コンテストのリマインダーを登録済みかを返す。
func (s *Service) IsNotified(ctx context.Context, userEmail string, contestID int64) (bool, error) {
	r, err := s.repo.FindByUserAndContest(ctx, userEmail, contestID)
	if err != nil {
		return false, fmt.Errorf("リマインダーの検索に失敗しました: %w", err)
	}
	return r != nil, nil
}

// UpdateNotifyBefore は通知タイミングを変更する。送信済みフラグは変更しない。
func (s *Service) UpdateNotifyBefore(ctx context.Context, userEmail, id, notifyBefore string) (*model.Reminder, error) {
	if id == "" {
		return nil, model.NewMissingFieldsError([]string{"id"})
	}
	// UUID でないIDは存在しないリマインダーとして扱う
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewReminderNotFoundError(id)
	}
	token := strings.TrimSpace(notifyBefore)
	if token == "" {
		return nil, model.NewMissingFieldsError([]string{"notify_before"})
	}
	if !ValidNotifyBefore(token) {
		return nil, model.NewInvalidNotifyBeforeError(notifyBefore)
	}

	r, err := s.repo.UpdateNotifyBefore(ctx, id, userEmail, token)
	if err != nil {
		return nil, fmt.Errorf("リマインダーの更新に失敗しました: %w", err)
	}
	if r == nil {
		return nil, model.NewReminderNotFoundError(id)
	}
	return r, nil
}

// Delete はリマインダーを削除する。
func (s *Service) Delete(ctx context.Context, userEmail, id string) error {
	if id == "" {
		return model.NewMissingFieldsError([]string{"id"})
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.NewReminderNotFoundError(id)
	}
	r, err := s.repo.Delete(ctx, id, userEmail)
	if err != nil {
		return fmt.Errorf("リマインダーの削除に失敗しました: %w", err)
	}
	if r == nil {
		return model.NewReminderNotFoundError(id)
	}

	s.logger.Info("リマインダーを削除しました",
		slog.String("reminder_id", id),
	)
	return nil
}

// missingFields は未入力の必須項目名を返す。
// 開始時刻は contest_start、または contest_date と contest_time の組のいずれかが必要。
func missingFields(in CreateInput) []string {
	var missing []string
	if in.ContestID == 0 {
		missing = append(missing, "contest_id")
	}
	if strings.TrimSpace(in.ContestName) == "" {
		missing = append(missing, "contest_name")
	}
	if strings.TrimSpace(in.ContestURL) == "" {
		missing = append(missing, "contest_url")
	}
	if in.ContestStart == nil {
		if strings.TrimSpace(in.ContestDate) == "" {
			missing = append(missing, "contest_date")
		}
		if strings.TrimSpace(in.ContestTime) == "" {
			missing = append(missing, "contest_time")
		}
	}
	return missing
}

// validateContestURL はスキームとホストを確認し、SSRFガードの静的検証を行う。
func (s *Service) validateContestURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return model.NewInvalidURLError(err.Error())
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return model.NewInvalidURLError("http または https のURLを指定してください")
	}
	if parsed.Host == "" {
		return model.NewInvalidURLError("ホストが含まれていません")
	}
	if s.validator != nil {
		if err := s.validator.ValidateURL(raw); err != nil {
			return model.NewSSRFBlockedError()
		}
	}
	return nil
}

// 表示用の日付・時刻の最大文字数。reminders テーブルの列幅と揃える。
const (
	maxContestDateLen = 64
	maxContestTimeLen = 32
)

// resolveSchedule は開始時刻と表示用の日付・時刻を確定する。
// 開始時刻が指定された場合は表示用文字列の欠けている側を補完し、
// 指定されない場合は表示用文字列から開始時刻を復元する。
func (s *Service) resolveSchedule(in CreateInput) (time.Time, string, string, error) {
	date := strings.TrimSpace(in.ContestDate)
	clock := strings.TrimSpace(in.ContestTime)
	if utf8.RuneCountInString(date) > maxContestDateLen {
		return time.Time{}, "", "", model.NewInvalidContestTimeError(fmt.Sprintf("contest_date は%d文字以内で指定してください", maxContestDateLen))
	}
	if utf8.RuneCountInString(clock) > maxContestTimeLen {
		return time.Time{}, "", "", model.NewInvalidContestTimeError(fmt.Sprintf("contest_time は%d文字以内で指定してください", maxContestTimeLen))
	}

	if in.ContestStart != nil {
		start := in.ContestStart.UTC()
		fDate, fClock := FormatDisplay(start, s.location)
		if date == "" {
			date = fDate
		}
		if clock == "" {
			clock = fClock
		}
		return start, date, clock, nil
	}

	start, err := ParseDisplay(date, clock, s.location)
	if err != nil {
		return time.Time{}, "", "", model.NewInvalidContestTimeError(err.Error())
	}
	return start.UTC(), date, clock, nil
}
