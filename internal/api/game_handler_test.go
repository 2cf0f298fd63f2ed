package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/mocks"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/biogames/biogames-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGameHandlerForTest(games *mocks.MockGameService, challenges *mocks.MockChallengeService) *GameHandler {
	if challenges == nil {
		challenges = &mocks.MockChallengeService{}
	}
	return NewGameHandler(games, challenges, nil)
}

func TestCreateGame(t *testing.T) {
	var got service.CreateGameRequest
	games := &mocks.MockGameService{
		CreateGameFn: func(_ context.Context, req service.CreateGameRequest) (*domain.Game, error) {
			got = req
			return &domain.Game{ID: 41, UserID: req.UserID, Username: "alice", Mode: domain.ModePretest,
				StartedAt: time.Now(), MaxScore: 250}, nil
		},
	}
	h := newGameHandlerForTest(games, nil)

	rec := serve(t, h, http.MethodPost, "/games?mode=pretest", `{"user_id":"alice-id","initial_core_id":345}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice-id", got.UserID)
	assert.Equal(t, "pretest", got.Mode)
	require.NotNil(t, got.InitialCoreID)
	assert.Equal(t, int64(345), *got.InitialCoreID)

	body := decodeMap(t, rec)
	assert.Equal(t, float64(41), body["id"])
	assert.Equal(t, "alice", body["user"])
	assert.Contains(t, body, "results")
	assert.Nil(t, body["results"])
	assert.Contains(t, body, "total_points")
	assert.Nil(t, body["total_points"])
}

func TestCreateGame_Ineligible(t *testing.T) {
	games := &mocks.MockGameService{
		DefaultError: &service.EligibilityError{Mode: domain.ModePretest, ResumeGameID: ptr(int64(9))},
	}
	h := newGameHandlerForTest(games, nil)

	rec := serve(t, h, http.MethodPost, "/games?mode=pretest", `{"user_id":"alice-id"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, service.ReasonModeNotEligible, resp.Reason)
	require.NotNil(t, resp.ResumeGameID)
	assert.Equal(t, int64(9), *resp.ResumeGameID)
	assert.Equal(t, "trace-test", resp.TraceID)
}

func TestCreateGame_RequestErrors(t *testing.T) {
	called := false
	games := &mocks.MockGameService{
		CreateGameFn: func(context.Context, service.CreateGameRequest) (*domain.Game, error) {
			called = true
			return nil, nil
		},
	}
	h := newGameHandlerForTest(games, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"user_id":`},
		{"missing user id", `{}`},
		{"negative initial core", `{"user_id":"alice-id","initial_core_id":-1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, h, http.MethodPost, "/games?mode=training", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, service.ReasonInvalidRequest, decodeError(t, rec).Reason)
		})
	}
	assert.False(t, called)
}

func TestCreateGame_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"unregistered", service.ErrUserNotRegistered, http.StatusBadRequest, service.ReasonUserNotRegistered},
		{"no cores", service.ErrNoCoresAvailable, http.StatusBadRequest, service.ReasonNoCoresAvailable},
		{"unknown initial core", store.ErrCoreNotFound, http.StatusNotFound, ""},
		{"database down", &service.ServiceError{Operation: "create_game", Err: context.DeadlineExceeded},
			http.StatusInternalServerError, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newGameHandlerForTest(&mocks.MockGameService{DefaultError: tc.err}, nil)
			rec := serve(t, h, http.MethodPost, "/games", `{"user_id":"alice-id"}`)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.reason, decodeError(t, rec).Reason)
		})
	}
}

func TestGetGame(t *testing.T) {
	games := &mocks.MockGameService{
		GetResultsFn: func(_ context.Context, id int64) (*service.GameReport, error) {
			require.Equal(t, int64(7), id)
			return &service.GameReport{
				Game: &domain.Game{ID: 7, Username: "bob"},
				Results: service.GameResults{
					SevereMistakes:   []service.ResultItem{{ChallengeID: 4, Guess: 0, CorrectScore: 3, Seconds: 6.5, Points: -4}},
					ModerateMistakes: []service.ResultItem{},
					MildMistakes:     []service.ResultItem{},
					Correct:          []service.ResultItem{{ChallengeID: 5, Guess: 2, CorrectScore: 2, Seconds: 5, Points: 5}},
				},
				TotalPoints: 1,
			}, nil
		},
	}
	h := newGameHandlerForTest(games, nil)

	rec := serve(t, h, http.MethodGet, "/games/7", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "bob", body["user"])
	assert.Equal(t, float64(1), body["total_points"])
	results := body["results"].(map[string]interface{})
	assert.Len(t, results["severe_mistakes"], 1)
	assert.Len(t, results["moderate_mistakes"], 0)
	assert.Len(t, results["correct"], 1)
	severe := results["severe_mistakes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(6.5), severe["seconds"])
	assert.Equal(t, float64(3), severe["correct_score"])
}

func TestGetGame_Errors(t *testing.T) {
	h := newGameHandlerForTest(&mocks.MockGameService{DefaultError: service.ErrGameNotScoreable}, nil)
	rec := serve(t, h, http.MethodGet, "/games/7", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ReasonGameNotScoreable, decodeError(t, rec).Reason)

	h = newGameHandlerForTest(&mocks.MockGameService{DefaultError: store.ErrGameNotFound}, nil)
	rec = serve(t, h, http.MethodGet, "/games/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Game not found", decodeError(t, rec).Error)

	rec = serve(t, h, http.MethodGet, "/games/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID", decodeError(t, rec).Error)
}

func TestCurrentChallenge(t *testing.T) {
	challenges := &mocks.MockChallengeService{
		CurrentFn: func(_ context.Context, gameID int64, completed int) (*service.CurrentChallenge, error) {
			assert.Equal(t, int64(3), gameID)
			assert.Equal(t, 4, completed)
			return &service.CurrentChallenge{ID: ptr(int64(88)), CoreID: ptr(int64(345)),
				CompletedChallenges: 4, TotalChallenges: 20}, nil
		},
	}
	h := newGameHandlerForTest(&mocks.MockGameService{}, challenges)

	rec := serve(t, h, http.MethodGet, "/games/3/challenge?completed_count=4", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(88), body["id"])
	assert.Equal(t, float64(345), body["core_id"])
	assert.Equal(t, float64(4), body["completed_challenges"])
	assert.Equal(t, float64(20), body["total_challenges"])
}

func TestCurrentChallenge_Complete(t *testing.T) {
	challenges := &mocks.MockChallengeService{
		CurrentFn: func(context.Context, int64, int) (*service.CurrentChallenge, error) {
			return &service.CurrentChallenge{CompletedChallenges: 20, TotalChallenges: 20}, nil
		},
	}
	h := newGameHandlerForTest(&mocks.MockGameService{}, challenges)

	rec := serve(t, h, http.MethodGet, "/games/3/challenge?completed_count=20", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Nil(t, body["id"])
	assert.NotContains(t, body, "core_id")
}

func TestCurrentChallenge_BadCount(t *testing.T) {
	h := newGameHandlerForTest(&mocks.MockGameService{}, &mocks.MockChallengeService{})
	rec := serve(t, h, http.MethodGet, "/games/3/challenge?completed_count=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ReasonInvalidRequest, decodeError(t, rec).Reason)
}

func TestQuitGame(t *testing.T) {
	games := &mocks.MockGameService{
		QuitGameFn: func(_ context.Context, id int64) (*domain.Game, error) {
			return &domain.Game{ID: id, Username: "carol", Score: ptr(-3)}, nil
		},
	}
	h := newGameHandlerForTest(games, nil)

	rec := serve(t, h, http.MethodPost, "/games/5/quit", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(5), body["id"])
	assert.Equal(t, float64(-3), body["total_points"])

	h = newGameHandlerForTest(&mocks.MockGameService{DefaultError: service.ErrGameFinished}, nil)
	rec = serve(t, h, http.MethodPost, "/games/5/quit", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ReasonGameFinished, decodeError(t, rec).Reason)
}

func TestNewGameHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewGameHandler(nil, &mocks.MockChallengeService{}, nil) })
}
