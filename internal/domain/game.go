package domain

import (
	"errors"
	"time"
)

// PointsPerChallenge is the best score a single challenge can yield. A
// game's MaxScore is its challenge count times this value.
const PointsPerChallenge = 5

// Game-specific validation errors
var (
	ErrGameUserIDEmpty   = errors.New("game user ID cannot be empty")
	ErrGameModeInvalid   = errors.New("game mode is invalid")
	ErrGameMaxScoreEmpty = errors.New("game max score must be positive")
)

// Game is one attempt at one mode by one user. Score, TimeTakenMS and
// FinishedAt stay nil until the game is finalized or quit.
type Game struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	Mode        Mode       `json:"mode"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Score       *int       `json:"score,omitempty"`
	MaxScore    int        `json:"max_score"`
	TimeTakenMS *int64     `json:"time_taken_ms,omitempty"`

	Challenges []*Challenge `json:"challenges,omitempty"`
}

// NewGame builds an unsaved game sized for challengeCount challenges.
func NewGame(userID, username string, mode Mode, challengeCount int) (*Game, error) {
	g := &Game{
		UserID:    userID,
		Username:  username,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		MaxScore:  challengeCount * PointsPerChallenge,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks if the Game has valid data.
func (g *Game) Validate() error {
	if g.UserID == "" {
		return ErrGameUserIDEmpty
	}
	if _, ok := ParseMode(string(g.Mode)); !ok {
		return ErrGameModeInvalid
	}
	if g.MaxScore <= 0 {
		return ErrGameMaxScoreEmpty
	}
	return nil
}

// IsFinished reports whether the game has been finalized or quit.
func (g *Game) IsFinished() bool {
	return g.FinishedAt != nil
}
