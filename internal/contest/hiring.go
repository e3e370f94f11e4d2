package contest

import "strings"

// hiringKeywords は採用目的のコンテストを示すタイトル中のキーワード。
var hiringKeywords = []string{
	"hiring challenge",
	"hiring test",
	"recruitment challenge",
	"interview contest",
	"job-a-thon",
	"placement drive",
	"codeathon for job",
	"code 360",
	"assessment",
	"screening test",
}

// recruitingPlatform は採用プラットフォームとして扱うプラットフォーム名の部分文字列。
const recruitingPlatform = "naukri"

// IsHiringChallenge はタイトルとプラットフォーム名から採用コンテストかどうかを判定する。
func IsHiringChallenge(title, platform string) bool {
	lowerTitle := strings.ToLower(title)

	hasKeyword := false
	for _, kw := range hiringKeywords {
		if strings.Contains(lowerTitle, kw) {
			hasKeyword = true
			break
		}
	}

	onRecruitingPlatform := strings.Contains(strings.ToLower(platform), recruitingPlatform) && hasKeyword
	return hasKeyword || onRecruitingPlatform
}
