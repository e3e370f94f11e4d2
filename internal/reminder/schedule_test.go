package reminder

import (
	"testing"
	"time"
)

func TestFormatDisplay(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2026, 10, 19, 14, 35, 0, 0, time.UTC)

	date, clock := FormatDisplay(start, kolkata)
	if date != "Mon, Oct 19, 2026" {
		t.Errorf("date = %q", date)
	}
	if clock != "08:05 PM" {
		t.Errorf("clock = %q", clock)
	}

	date, clock = FormatDisplay(start, nil)
	if date != "Mon, Oct 19, 2026" || clock != "02:35 PM" {
		t.Errorf("nilの場合はUTCで整形されるべきです: %q %q", date, clock)
	}
}

func TestParseDisplay(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	want := time.Date(2026, 10, 19, 14, 35, 0, 0, time.UTC)

	tests := []struct {
		name  string
		date  string
		clock string
	}{
		{"標準書式", "Mon, Oct 19, 2026", "08:05 PM"},
		{"小文字のpm", "Mon, Oct 19, 2026", "08:05 pm"},
		{"ゼロ埋めなし", "Mon, Oct 19, 2026", "8:05 PM"},
		{"狭い改行なし空白", "Mon, Oct 19, 2026", "08:05\u202fPM"},
		{"改行なし空白", "Mon,\u00a0Oct 19, 2026", "08:05 PM"},
		{"曜日なし", "Oct 19, 2026", "08:05 PM"},
		{"ISO日付と24時間表記", "2026-10-19", "20:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDisplay(tt.date, tt.clock, kolkata)
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDisplay = %v, want %v", got.UTC(), want)
			}
		})
	}
}

func TestParseDisplay_Invalid(t *testing.T) {
	inputs := [][2]string{
		{"", ""},
		{"tomorrow", "noon"},
		{"Mon, Oct 19, 2026", "25:99 PM"},
	}
	for _, in := range inputs {
		if _, err := ParseDisplay(in[0], in[1], time.UTC); err == nil {
			t.Errorf("ParseDisplay(%q, %q) はエラーになるべきです", in[0], in[1])
		}
	}
}

func TestFormatParseDisplay_RoundTrip(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)

	date, clock := FormatDisplay(start, loc)
	got, err := ParseDisplay(date, clock, loc)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if !got.Equal(start) {
		t.Errorf("往復変換で時刻が変わりました: %v -> %v", start, got.UTC())
	}
}

func TestFireWindow(t *testing.T) {
	start := time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)
	from, to := FireWindowFor(start, 2*time.Hour)

	wantFrom := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantFrom.Add(5 * time.Minute)) {
		t.Errorf("to = %v, want %v", to, wantFrom.Add(5*time.Minute))
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"開始端を含む", from, true},
		{"終了端を含む", to, true},
		{"時間帯の中", from.Add(2 * time.Minute), true},
		{"時間帯より前", from.Add(-time.Second), false},
		{"時間帯より後", to.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.now, from, to); got != tt.want {
				t.Errorf("InWindow = %v, want %v", got, tt.want)
			}
		})
	}
}
