package api

import (
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/service"
)

// CreateGameRequest is the body of POST /games.
type CreateGameRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	InitialCoreID *int64 `json:"initial_core_id,omitempty" validate:"omitempty,gt=0"`
}

// GameResponse describes a game. Results and TotalPoints are null until
// the game has answered challenges.
type GameResponse struct {
	ID          int64                `json:"id"`
	User        string               `json:"user"`
	Results     *service.GameResults `json:"results"`
	TotalPoints *int                 `json:"total_points"`
}

// CurrentChallengeResponse points at the next unanswered challenge. ID is
// null once the game is complete.
type CurrentChallengeResponse struct {
	ID                  *int64 `json:"id"`
	CoreID              *int64 `json:"core_id,omitempty"`
	CompletedChallenges int    `json:"completed_challenges"`
	TotalChallenges     int    `json:"total_challenges"`
}

// SubmitGuessRequest is the body of POST /challenges/{id}. The range check
// happens in the service so that it reports invalid_guess.
type SubmitGuessRequest struct {
	Guess *int `json:"guess" validate:"required"`
}

// SubmitGuessResponse echoes the scored guess.
type SubmitGuessResponse struct {
	ID     int64 `json:"id"`
	Guess  int   `json:"guess"`
	Points int   `json:"points"`
}

// LeaderboardResponse wraps the ranked training sessions.
type LeaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// RegisterUserRequest is the body of POST /users.
type RegisterUserRequest struct {
	UserID   string `json:"user_id" validate:"required,min=5"`
	Username string `json:"username" validate:"required,max=32"`
}

// UserResponse reports whether a user has picked a display name.
type UserResponse struct {
	HasUsername bool    `json:"has_username"`
	Username    *string `json:"username"`
}

// PreviewCoreResponse names a core for the intro screen.
type PreviewCoreResponse struct {
	CoreID int64 `json:"core_id"`
}

func gameToResponse(game *domain.Game) GameResponse {
	return GameResponse{ID: game.ID, User: game.Username, TotalPoints: game.Score}
}

func reportToResponse(report *service.GameReport) GameResponse {
	resp := gameToResponse(report.Game)
	results := report.Results
	total := report.TotalPoints
	resp.Results = &results
	resp.TotalPoints = &total
	return resp
}

func userToResponse(u *domain.User) UserResponse {
	if u == nil || !u.HasUsername() {
		return UserResponse{}
	}
	return UserResponse{HasUsername: true, Username: u.Username}
}
