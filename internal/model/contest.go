package model

import "time"

// ContestStatus はコンテストの開催状態を表す。
// 取得のたびに現在時刻から再計算され、永続化されない。
type ContestStatus string

const (
	// ContestStatusUpcoming は開始前のコンテスト。
	ContestStatusUpcoming ContestStatus = "upcoming"
	// ContestStatusLive は開催中かつ24時間以内のコンテスト。
	ContestStatusLive ContestStatus = "live"
	// ContestStatusOngoing は開催中かつ24時間を超える長期コンテスト。
	ContestStatusOngoing ContestStatus = "ongoing"
	// ContestStatusEnded は終了済みのコンテスト。
	ContestStatusEnded ContestStatus = "ended"
)

// Rank は一覧の並び順で使う状態の優先度を返す。
// upcoming=1, live=2, ongoing=3, ended=4, それ以外=5。
func (s ContestStatus) Rank() int {
	switch s {
	case ContestStatusUpcoming:
		return 1
	case ContestStatusLive:
		return 2
	case ContestStatusOngoing:
		return 3
	case ContestStatusEnded:
		return 4
	default:
		return 5
	}
}

// Difficulty はコンテストの難易度ティアを表す。
type Difficulty string

const (
	DifficultyBeginner Difficulty = "Beginner"
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyHard     Difficulty = "Hard"
	DifficultyExpert   Difficulty = "Expert"
)

// Platform は正規化済みのプラットフォーム名とロゴの参照先を表す。
type Platform struct {
	Name string
	Logo string
}

// RawContest はリスティングソースから取得した未加工のコンテスト情報を表す。
type RawContest struct {
	ID              int64  `json:"id"`
	Resource        string `json:"resource"`
	Event           string `json:"event"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationSeconds int64  `json:"duration"`
	Href            string `json:"href"`
	ProblemCount    *int   `json:"n_problems"`
}

// Contest は正規化・分類済みのコンテストを表す。
// 取得のたびに生成され、変更されない。
type Contest struct {
	ID                int64
	Platform          string
	PlatformLogo      string
	Title             string
	StartTime         time.Time
	EndTime           time.Time
	DurationSeconds   int64
	Duration          string
	Difficulty        Difficulty
	Status            ContestStatus
	ProblemCount      int
	URL               string
	IsHiringChallenge bool
}
