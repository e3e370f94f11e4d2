// Package reminder はコンテストリマインダーの登録・管理と送信スイープを提供する。
package reminder

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultOffset は通知タイミングが解釈できない場合に使う既定値。
const DefaultOffset = time.Hour

// offsetPattern は "15m" や "2h" のような通知タイミングの書式。文字列全体に一致する必要がある。
var offsetPattern = regexp.MustCompile(`^(\d+)([mh])$`)

// parseOffset は通知タイミングを解釈する。書式不正やオーバーフローの場合はokがfalseとなる。
func parseOffset(token string) (time.Duration, bool) {
	m := offsetPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	unit := time.Minute
	if m[2] == "h" {
		unit = time.Hour
	}
	if value > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(value) * unit, true
}

// ParseOffset は通知タイミング（例: "15m", "2h"）を期間に変換する。
// 解釈できない場合は警告ログを出力して DefaultOffset を返し、エラーにはしない。
func ParseOffset(token string, logger *slog.Logger) time.Duration {
	if d, ok := parseOffset(token); ok {
		return d
	}
	if logger != nil {
		logger.Warn("通知タイミングの書式が不正なため既定値を使用します",
			slog.String("notify_before", token),
			slog.Duration("default", DefaultOffset),
		)
	}
	return DefaultOffset
}

// ValidNotifyBefore は通知タイミングが書式に合致するかを返す。
// 登録・更新時の入力検証に使用する。
func ValidNotifyBefore(token string) bool {
	_, ok := parseOffset(token)
	return ok
}
