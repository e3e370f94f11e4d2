package contest

import (
	"fmt"
	"strings"
)

// FormatDuration は秒数を "2 hours 30 minutes" のような文に整形する。
// 1日以上の場合は日数のみを返し、端数の時間・分は切り捨てる。
// 負の値は0として扱う。
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0 minutes"
	}

	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	if days >= 1 {
		return plural(days, "day")
	}

	var parts []string
	if h := hours % 24; h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m := minutes % 60; m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if len(parts) == 0 {
		return "0 minutes"
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
