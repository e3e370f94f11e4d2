// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, reminder, contest, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields       = "MISSING_FIELDS"
	ErrCodeInvalidURL          = "INVALID_URL"
	ErrCodeSSRFBlocked         = "SSRF_BLOCKED"
	ErrCodeInvalidNotifyBefore = "INVALID_NOTIFY_BEFORE"
	ErrCodeInvalidContestTime  = "INVALID_CONTEST_TIME"
	ErrCodeReminderConflict    = "REMINDER_CONFLICT"
	ErrCodeReminderNotFound    = "REMINDER_NOT_FOUND"
	ErrCodeInvalidFilter       = "INVALID_FILTER"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeMissingCredentials  = "MISSING_CREDENTIALS"
)

// NewMissingFieldsError は必須項目不足エラーを生成する。
func NewMissingFieldsError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  fmt.Sprintf("必須項目が不足しています: %s", strings.Join(fields, ", ")),
		Category: "validation",
		Action:   "contest_id、contest_name、contest_url と、contest_start または contest_date・contest_time を指定してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLは登録できません。",
		Category: "validation",
		Action:   "公開されているコンテストページのURLを指定してください。",
	}
}

// NewInvalidNotifyBeforeError は通知タイミングの書式エラーを生成する。
func NewInvalidNotifyBeforeError(token string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidNotifyBefore,
		Message:  fmt.Sprintf("無効な通知タイミングです: %q", token),
		Category: "validation",
		Action:   "「15m」「2h」のように、数値に m（分）または h（時間）を付けて指定してください。",
	}
}

// NewInvalidContestTimeError はコンテスト開始時刻を解釈できない場合のエラーを生成する。
func NewInvalidContestTimeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidContestTime,
		Message:  fmt.Sprintf("コンテストの開始時刻を解釈できません: %s", reason),
		Category: "validation",
		Action:   "contest_start にRFC3339形式の時刻を指定するか、表示用の日付と時刻を正しく指定してください。",
	}
}

// NewReminderConflictError は同一コンテストへの重複登録エラーを生成する。
func NewReminderConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeReminderConflict,
		Message:  "このコンテストのリマインダーは既に登録されています。",
		Category: "reminder",
		Action:   "リマインダー一覧から通知タイミングを変更してください。",
	}
}

// NewReminderNotFoundError はリマインダーが見つからない、または所有者でない場合のエラーを生成する。
func NewReminderNotFoundError(reminderID string) *APIError {
	return &APIError{
		Code:     ErrCodeReminderNotFound,
		Message:  fmt.Sprintf("指定されたリマインダーが見つかりません: %s", reminderID),
		Category: "reminder",
		Action:   "リマインダーIDを確認してください。",
	}
}

// NewInvalidFilterError は無効な絞り込み・ページング指定のエラーを生成する。
func NewInvalidFilterError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効な絞り込み条件です: %s", reason),
		Category: "validation",
		Action:   "page と per_page には正の整数を指定してください。",
	}
}

// NewInvalidEmailError はメールアドレスの書式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "有効なメールアドレスを入力してください。",
	}
}

// NewWeakPasswordError はパスワード強度不足のエラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードの強度が不足しています。",
		Category: "validation",
		Action:   "8文字以上で、大文字・小文字・数字・記号をそれぞれ1文字以上含めてください。",
	}
}

// NewUserAlreadyExistsError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserAlreadyExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスを使用してください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewMissingCredentialsError はサインアップ時の必須項目不足エラーを生成する。
func NewMissingCredentialsError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingCredentials,
		Message:  fmt.Sprintf("必須項目が不足しています: %s", strings.Join(fields, ", ")),
		Category: "auth",
		Action:   "メールアドレスとパスワードを入力してください。",
	}
}
