// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/contesthub/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合は ErrUserEmailTaken を返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ReminderRepository はリマインダーの永続化インターフェース。
// (user_email, contest_id) の一意制約が同時登録に対する唯一の排他制御となる。
type ReminderRepository interface {
	// FindByUserAndContest はユーザーとコンテストIDでリマインダーを取得する。見つからない場合はnilを返す。
	FindByUserAndContest(ctx context.Context, userEmail string, contestID int64) (*model.Reminder, error)

	// ListByUser はユーザーのリマインダーを作成日時の降順で返す。
	ListByUser(ctx context.Context, userEmail string) ([]*model.Reminder, error)

	// ListPending は未送信（reminder_sent = false）のリマインダーを全件返す。
	ListPending(ctx context.Context) ([]*model.Reminder, error)

	// Create はリマインダーを作成する。
	// 同一ユーザー・同一コンテストが既に存在する場合は model.ErrReminderConflict を返す。
	Create(ctx context.Context, reminder *model.Reminder) error

	// UpdateNotifyBefore は所有者が一致するリマインダーの通知タイミングを更新する。
	// 見つからない、または所有者が異なる場合はnilを返す。
	UpdateNotifyBefore(ctx context.Context, id, userEmail, notifyBefore string) (*model.Reminder, error)

	// Delete は所有者が一致するリマインダーを削除し、削除したレコードを返す。
	// 見つからない、または所有者が異なる場合はnilを返す。
	Delete(ctx context.Context, id, userEmail string) (*model.Reminder, error)

	// MarkSent はリマインダーを送信済みにする。
	MarkSent(ctx context.Context, id string) error

	// DeleteByUserEmail はユーザーの全リマインダーを削除する。
	DeleteByUserEmail(ctx context.Context, userEmail string) error
}
