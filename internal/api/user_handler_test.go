package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/mocks"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	users := &mocks.MockUserService{
		RegisterFn: func(_ context.Context, userID, username string) (*domain.User, error) {
			return &domain.User{UserID: userID, Username: &username}, nil
		},
	}
	h := NewUserHandler(users, &mocks.MockGameService{}, nil)

	rec := serve(t, h, http.MethodPost, "/users", `{"user_id":"alice-id","username":"alice"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"has_username":true,"username":"alice"}`, rec.Body.String())
}

func TestRegisterUser_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		reason string
	}{
		{"short user id", `{"user_id":"abc","username":"alice"}`, nil, service.ReasonInvalidRequest},
		{"long username", `{"user_id":"alice-id","username":"` + strings.Repeat("x", 33) + `"}`, nil, service.ReasonInvalidRequest},
		{"missing username", `{"user_id":"alice-id"}`, nil, service.ReasonInvalidRequest},
		{"name taken once", `{"user_id":"alice-id","username":"alicia"}`, service.ErrUsernameAlreadySet, service.ReasonUsernameAlreadySet},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewUserHandler(&mocks.MockUserService{DefaultError: tc.err}, &mocks.MockGameService{}, nil)
			rec := serve(t, h, http.MethodPost, "/users", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.reason, decodeError(t, rec).Reason)
		})
	}
}

func TestGetUser(t *testing.T) {
	users := &mocks.MockUserService{
		LookupFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID == "alice-id" {
				return &domain.User{UserID: userID, Username: ptr("alice")}, nil
			}
			return &domain.User{UserID: userID}, nil
		},
	}
	h := NewUserHandler(users, &mocks.MockGameService{}, nil)

	rec := serve(t, h, http.MethodGet, "/users/alice-id", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"has_username":true,"username":"alice"}`, rec.Body.String())

	rec = serve(t, h, http.MethodGet, "/users/ghost-id", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"has_username":false,"username":null}`, rec.Body.String())
}

func TestGameCounts(t *testing.T) {
	games := &mocks.MockGameService{
		GameCountsFn: func(_ context.Context, userID string) (domain.ModeCounts, error) {
			assert.Equal(t, "alice-id", userID)
			return domain.ModeCounts{Pretest: 1, Training: 12}, nil
		},
	}
	h := NewUserHandler(&mocks.MockUserService{}, games, nil)

	rec := serve(t, h, http.MethodGet, "/users/alice-id/game-counts", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pretest":1,"training":12,"posttest":0}`, rec.Body.String())
}
