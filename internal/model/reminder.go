package model

import (
	"errors"
	"time"
)

// DefaultNotifyBefore はリマインダーの通知タイミングの既定値。
const DefaultNotifyBefore = "1h"

// DefaultReminderPlatform はプラットフォーム未指定時の既定値。
const DefaultReminderPlatform = "Unknown"

// ErrReminderConflict は同一ユーザー・同一コンテストのリマインダーが既に存在することを表す。
var ErrReminderConflict = errors.New("reminder already exists for this contest")

// Reminder はユーザーが登録したコンテストのリマインダーを表す。
// (UserEmail, ContestID) の組で一意となる。
type Reminder struct {
	ID          string
	UserEmail   string
	ContestID   int64
	ContestName string
	ContestURL  string
	// ContestDate と ContestTime は登録時に整形済みの表示用文字列。
	ContestDate string
	ContestTime string
	// ContestStartAt は登録時に確定したコンテスト開始時刻。
	// 旧データではnilとなり、表示用文字列から復元する。
	ContestStartAt *time.Time
	Platform       string
	NotifyBefore   string
	ReminderSent   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
