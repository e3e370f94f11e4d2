package contest

import (
	"slices"
	"strings"

	"github.com/hitoshi/contesthub/internal/model"
)

const (
	// OthersPlatform は既知プラットフォーム以外をまとめて選択するための指定値。
	OthersPlatform = "Others"

	// DefaultPerPage は1ページあたりの既定件数。
	DefaultPerPage = 12
	// MaxPerPage は1ページあたりの最大件数。
	MaxPerPage = 100
)

// knownPlatforms は "Others" 指定から除外されるプラットフォーム。
var knownPlatforms = []string{"Codeforces", "LeetCode", "CodeChef", "AtCoder", "Naukri", "TopCoder"}

// Filter はコンテスト一覧の絞り込み条件。
// 空のフィールドは条件として扱わない。
type Filter struct {
	Query        string
	Platforms    []string
	Difficulties []string
	Statuses     []string
}

// Apply は条件に一致するコンテストを元の順序のまま返す。
func (f Filter) Apply(contests []model.Contest) []model.Contest {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	othersSelected := slices.Contains(f.Platforms, OthersPlatform)

	result := make([]model.Contest, 0, len(contests))
	for _, c := range contests {
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Title), query) &&
			!strings.Contains(strings.ToLower(c.Platform), query) {
			continue
		}

		if len(f.Platforms) > 0 {
			selected := slices.Contains(f.Platforms, c.Platform)
			other := othersSelected && !slices.Contains(knownPlatforms, c.Platform)
			if !selected && !other {
				continue
			}
		}

		if len(f.Difficulties) > 0 && !slices.Contains(f.Difficulties, string(c.Difficulty)) {
			continue
		}

		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, string(c.Status)) {
			continue
		}

		result = append(result, c)
	}
	return result
}

// Page はページング結果を表す。
type Page struct {
	Items      []model.Contest
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
}

// Paginate はpage（1始まり）とperPageで一覧を切り出す。
// perPageが0以下なら DefaultPerPage、MaxPerPage を超える場合は MaxPerPage に丸める。
// pageが1未満なら1として扱い、範囲外のページは空のItemsを返す。
func Paginate(contests []model.Contest, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(contests)
	totalPages := (total + perPage - 1) / perPage

	// page は totalPages 以下に限って乗算し、巨大な page でのオーバーフローを避ける。
	items := []model.Contest{}
	if page <= totalPages {
		start := (page - 1) * perPage
		end := min(start+perPage, total)
		items = contests[start:end]
	}

	return Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
