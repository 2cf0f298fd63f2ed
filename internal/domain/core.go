package domain

import "time"

// Core is a single microscopy image with a fixed ground-truth HER2 score.
// Cores are reference data and are never modified by the game engine.
type Core struct {
	ID        int64     `json:"id"`
	Score     int       `json:"score"`
	FileName  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
