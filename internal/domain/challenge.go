package domain

import "time"

// MinGuess and MaxGuess bound the HER2 score scale.
const (
	MinGuess = 0
	MaxGuess = 3
)

// Challenge is one core shown within one game.
type Challenge struct {
	ID          int64      `json:"id"`
	GameID      int64      `json:"game_id"`
	CoreID      int64      `json:"core_id"`
	Guess       *int       `json:"guess,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Points      *int       `json:"points,omitempty"`
}

// IsAnswered reports whether a guess has been recorded.
func (c *Challenge) IsAnswered() bool {
	return c.Guess != nil
}

// IsStarted reports whether the image has been fetched at least once.
func (c *Challenge) IsStarted() bool {
	return c.StartedAt != nil
}

// Elapsed returns submitted_at - started_at, or zero when either is unset.
func (c *Challenge) Elapsed() time.Duration {
	if c.StartedAt == nil || c.SubmittedAt == nil {
		return 0
	}
	return c.SubmittedAt.Sub(*c.StartedAt)
}

// ValidGuess reports whether guess lies on the 0-3 scale.
func ValidGuess(guess int) bool {
	return guess >= MinGuess && guess <= MaxGuess
}

// ChallengeDetail joins a challenge with its game and core. It is what the
// challenge tracker loads before acting on a challenge.
type ChallengeDetail struct {
	Challenge *Challenge
	Game      *Game
	Core      *Core
}
