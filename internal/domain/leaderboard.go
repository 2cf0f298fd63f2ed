package domain

import (
	"sort"
	"time"
)

// LeaderboardEntry is the best finished training game of one user.
type LeaderboardEntry struct {
	UserID      string    `json:"-"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	TimeTakenMS int64     `json:"time_taken_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// RanksBefore reports whether e ranks ahead of other: higher score first,
// then lower elapsed time, then earlier finish.
func (e LeaderboardEntry) RanksBefore(other LeaderboardEntry) bool {
	if e.Score != other.Score {
		return e.Score > other.Score
	}
	if e.TimeTakenMS != other.TimeTakenMS {
		return e.TimeTakenMS < other.TimeTakenMS
	}
	return e.Timestamp.Before(other.Timestamp)
}

// SortLeaderboard orders entries in ranking order, in place.
func SortLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RanksBefore(entries[j])
	})
}
