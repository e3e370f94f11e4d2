package reminder

import (
	"fmt"
	"strings"
	"time"
)

// FireWindow は通知タイミング到来後にリマインダーを送信できる時間幅。
// スイープの実行間隔はこの値以下でなければならない。
const FireWindow = 5 * time.Minute

const (
	displayDateLayout = "Mon, Jan 2, 2006"
	displayTimeLayout = "03:04 PM"
)

// displayLayouts は表示用の日付と時刻を連結した文字列として受け付ける書式。
var displayLayouts = []string{
	displayDateLayout + " " + displayTimeLayout,
	"Mon, Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 03:04 PM",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 03:04 PM",
}

// FormatDisplay は開始時刻を表示用の日付（例: "Mon, Oct 19, 2026"）と
// 時刻（例: "08:05 PM"）に整形する。
func FormatDisplay(t time.Time, loc *time.Location) (date, clock string) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Format(displayDateLayout), local.Format(displayTimeLayout)
}

// ParseDisplay は表示用の日付と時刻の文字列を連結して開始時刻に復元する。
// タイムゾーン表記を含まないため loc の時刻として解釈する。
func ParseDisplay(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	combined := normalizeSpaces(strings.TrimSpace(date) + " " + strings.ToUpper(strings.TrimSpace(clock)))
	for _, layout := range displayLayouts {
		if t, err := time.ParseInLocation(layout, combined, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized contest date/time: %q", combined)
}

// normalizeSpaces はロケール整形で混入する特殊な空白を通常の空白にそろえる。
func normalizeSpaces(s string) string {
	s = strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// FireWindowFor は開始時刻と通知オフセットから送信可能な時間幅 [from, to] を返す。
func FireWindowFor(start time.Time, offset time.Duration) (from, to time.Time) {
	from = start.Add(-offset)
	return from, from.Add(FireWindow)
}

// InWindow は now が [from, to] に含まれるかを返す。両端を含む。
func InWindow(now, from, to time.Time) bool {
	return !now.Before(from) && !now.After(to)
}
