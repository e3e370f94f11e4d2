// Package contest はコンテスト一覧の正規化・分類と絞り込みを提供する。
package contest

import (
	"strings"

	"github.com/hitoshi/contesthub/internal/model"
)

// genericLogo は未知のプラットフォームに使うロゴ。
const genericLogo = "/images/generic.jpg"

// platformRule はリソース名の部分一致キーと正規化後のプラットフォームの対応。
type platformRule struct {
	match    string
	platform model.Platform
}

// platformTable は先頭から順に評価される。最初に一致した行が採用される。
var platformTable = []platformRule{
	{match: "codeforces", platform: model.Platform{Name: "Codeforces", Logo: "/images/codeforces.png"}},
	{match: "leetcode", platform: model.Platform{Name: "LeetCode", Logo: "/images/leetcode.svg"}},
	{match: "codechef", platform: model.Platform{Name: "CodeChef", Logo: "/images/codechef.svg"}},
	{match: "atcoder", platform: model.Platform{Name: "AtCoder", Logo: "/images/atcoder.png"}},
	{match: "naukri", platform: model.Platform{Name: "Naukri", Logo: "/images/naukri.png"}},
	{match: "geeksforgeeks", platform: model.Platform{Name: "GeeksforGeeks", Logo: "/images/gfg.png"}},
	{match: "kaggle", platform: model.Platform{Name: "Kaggle", Logo: "/images/kaggle.jpg"}},
	{match: "algotester", platform: model.Platform{Name: "Algotester", Logo: "/images/algotester.png"}},
	{match: "topcoder", platform: model.Platform{Name: "TopCoder", Logo: "/images/topcoder.png"}},
}

// ClassifyPlatform はリソース名（例: "codeforces.com"）から正規化済みのプラットフォームを返す。
// 大文字小文字を区別せず部分一致で判定し、どれにも一致しない場合は
// 最初の "." より前の文字列（空なら "Other"）を名前とする。
func ClassifyPlatform(resource string) model.Platform {
	lower := strings.ToLower(resource)
	for _, rule := range platformTable {
		if strings.Contains(lower, rule.match) {
			return rule.platform
		}
	}

	name, _, _ := strings.Cut(resource, ".")
	if name == "" {
		name = "Other"
	}
	return model.Platform{Name: name, Logo: genericLogo}
}
