package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/contesthub/internal/model"
)

// PostgresReminderRepo はPostgreSQLを使用したリマインダーリポジトリ。
type PostgresReminderRepo struct {
	db *sql.DB
}

// NewPostgresReminderRepo はPostgresReminderRepoを生成する。
func NewPostgresReminderRepo(db *sql.DB) *PostgresReminderRepo {
	return &PostgresReminderRepo{db: db}
}

const reminderColumns = `id, user_email, contest_id, contest_name, contest_url,
	contest_date, contest_time, contest_start_at, platform, notify_before,
	reminder_sent, created_at, updated_at`

// rowScanner は *sql.Row と *sql.Rows の共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(s rowScanner) (*model.Reminder, error) {
	r := &model.Reminder{}
	var startAt sql.NullTime
	err := s.Scan(
		&r.ID, &r.UserEmail, &r.ContestID, &r.ContestName, &r.ContestURL,
		&r.ContestDate, &r.ContestTime, &startAt, &r.Platform, &r.NotifyBefore,
		&r.ReminderSent, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startAt.Valid {
		t := startAt.Time
		r.ContestStartAt = &t
	}
	return r, nil
}

func (r *PostgresReminderRepo) queryList(ctx context.Context, query string, args ...any) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("リマインダー行の読み取りに失敗しました: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindByUserAndContest はユーザーとコンテストIDでリマインダーを取得する。見つからない場合はnilを返す。
func (r *PostgresReminderRepo) FindByUserAndContest(ctx context.Context, userEmail string, contestID int64) (*model.Reminder, error) {
	rem, err := scanReminder(r.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_email = $1 AND contest_id = $2`,
		userEmail, contestID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リマインダーの検索に失敗しました: %w", err)
	}
	return rem, nil
}

// ListByUser はユーザーのリマインダーを作成日時の降順で返す。
func (r *PostgresReminderRepo) ListByUser(ctx context.Context, userEmail string) ([]*model.Reminder, error) {
	reminders, err := r.queryList(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_email = $1 ORDER BY created_at DESC`,
		userEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("リマインダー一覧の取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// ListPending は未送信のリマインダーを全件返す。
func (r *PostgresReminderRepo) ListPending(ctx context.Context) ([]*model.Reminder, error) {
	reminders, err := r.queryList(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_sent = false ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("未送信リマインダーの取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// Create はリマインダーを作成する。(user_email, contest_id) が重複する場合は model.ErrReminderConflict を返す。
func (r *PostgresReminderRepo) Create(ctx context.Context, rem *model.Reminder) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (id, user_email, contest_id, contest_name, contest_url,
		   contest_date, contest_time, contest_start_at, platform, notify_before,
		   reminder_sent, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rem.ID, rem.UserEmail, rem.ContestID, rem.ContestName, rem.ContestURL,
		rem.ContestDate, rem.ContestTime, rem.ContestStartAt, rem.Platform, rem.NotifyBefore,
		rem.ReminderSent, rem.CreatedAt, rem.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrReminderConflict
	}
	if err != nil {
		return fmt.Errorf("リマインダーの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateNotifyBefore は所有者が一致するリマインダーの通知タイミングを更新する。
// 見つからない、または所有者が異なる場合はnilを返す。
func (r *PostgresReminderRepo) UpdateNotifyBefore(ctx context.Context, id, userEmail, notifyBefore string) (*model.Reminder, error) {
	rem, err := scanReminder(r.db.QueryRowContext(ctx,
		`UPDATE reminders SET notify_before = $1, updated_at = $2
		 WHERE id = $3 AND user_email = $4
		 RETURNING `+reminderColumns,
		notifyBefore, time.Now(), id, userEmail,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リマインダーの更新に失敗しました: %w", err)
	}
	return rem, nil
}

// Delete は所有者が一致するリマインダーを削除し、削除したレコードを返す。
func (r *PostgresReminderRepo) Delete(ctx context.Context, id, userEmail string) (*model.Reminder, error) {
	rem, err := scanReminder(r.db.QueryRowContext(ctx,
		`DELETE FROM reminders WHERE id = $1 AND user_email = $2 RETURNING `+reminderColumns,
		id, userEmail,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リマインダーの削除に失敗しました: %w", err)
	}
	return rem, nil
}

// MarkSent はリマインダーを送信済みにする。
func (r *PostgresReminderRepo) MarkSent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET reminder_sent = true, updated_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("送信済みフラグの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserEmail はユーザーの全リマインダーを削除する。
func (r *PostgresReminderRepo) DeleteByUserEmail(ctx context.Context, userEmail string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_email = $1`, userEmail); err != nil {
		return fmt.Errorf("ユーザーのリマインダー削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ReminderRepository = (*PostgresReminderRepo)(nil)
