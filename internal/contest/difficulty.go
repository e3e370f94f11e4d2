package contest

import (
	"strings"

	"github.com/hitoshi/contesthub/internal/model"
)

// difficultyRule はプラットフォームとタイトルのキーワードから難易度を決める規則。
type difficultyRule struct {
	platform   string
	keywords   []string
	difficulty model.Difficulty
}

// difficultyRules は宣言順に評価される。順序は判定結果に影響するため並べ替えないこと。
// 例: LeetCode の "Biweekly Contest" は先に宣言された "weekly" に一致し Easy となる。
var difficultyRules = []difficultyRule{
	{platform: "AtCoder", keywords: []string{"beginner"}, difficulty: model.DifficultyBeginner},
	{platform: "AtCoder", keywords: []string{"regular"}, difficulty: model.DifficultyMedium},
	{platform: "AtCoder", keywords: []string{"grand"}, difficulty: model.DifficultyHard},

	{platform: "LeetCode", keywords: []string{"weekly"}, difficulty: model.DifficultyEasy},
	{platform: "LeetCode", keywords: []string{"biweekly"}, difficulty: model.DifficultyMedium},

	{platform: "Codeforces", keywords: []string{"div. 3", "div3"}, difficulty: model.DifficultyEasy},
	{platform: "Codeforces", keywords: []string{"div. 2", "div2"}, difficulty: model.DifficultyMedium},
	{platform: "Codeforces", keywords: []string{"div. 1", "div1"}, difficulty: model.DifficultyHard},
	{platform: "Codeforces", keywords: []string{"global"}, difficulty: model.DifficultyHard},

	{platform: "CodeChef", keywords: []string{"starters"}, difficulty: model.DifficultyBeginner},
	{platform: "CodeChef", keywords: []string{"lunchtime"}, difficulty: model.DifficultyEasy},
	{platform: "CodeChef", keywords: []string{"cook-off", "cookoff"}, difficulty: model.DifficultyMedium},
	{platform: "CodeChef", keywords: []string{"long challenge", " rated"}, difficulty: model.DifficultyHard},

	{platform: "TopCoder", keywords: []string{"srm"}, difficulty: model.DifficultyHard},
}

// InferDifficulty は正規化済みのプラットフォーム名とタイトルから難易度を推定する。
// 一致する規則がない場合は Medium を返す。
func InferDifficulty(platform, title string) model.Difficulty {
	lowerTitle := strings.ToLower(title)
	for _, rule := range difficultyRules {
		if rule.platform != platform {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(lowerTitle, kw) {
				return rule.difficulty
			}
		}
	}
	return model.DifficultyMedium
}
