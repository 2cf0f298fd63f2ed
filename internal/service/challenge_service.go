package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/domain/scoring"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/store"
)

// ErrImageNotFound is returned when a core's image file is missing.
var ErrImageNotFound = fmt.Errorf("%w: core image", store.ErrNotFound)

// ImageSource opens the image of a core.
type ImageSource interface {
	Open(ctx context.Context, core *domain.Core) (*images.Image, error)
}

// SubmissionRecorder is notified of every accepted guess.
type SubmissionRecorder interface {
	RecordSubmission(points int)
}

// CurrentChallenge tells a client where it is in a game. ID and CoreID are
// nil when no unanswered challenge is left at the requested position.
type CurrentChallenge struct {
	ID                  *int64 `json:"id"`
	CoreID              *int64 `json:"core_id"`
	CompletedChallenges int    `json:"completed_challenges"`
	TotalChallenges     int    `json:"total_challenges"`
}

// ChallengeService tracks the state of individual challenges.
type ChallengeService interface {
	// FetchContent opens the challenge's core image and starts its clock
	// the first time it is fetched. The caller must close the image body.
	FetchContent(ctx context.Context, challengeID int64) (*images.Image, error)

	// Submit scores a guess. Each challenge accepts exactly one guess.
	Submit(ctx context.Context, challengeID int64, guess int) (*domain.Challenge, error)

	// Current returns the completedCount-th unanswered challenge of a game,
	// counting from zero in ID order.
	Current(ctx context.Context, gameID int64, completedCount int) (*CurrentChallenge, error)
}

// ChallengeServiceDeps lists what a ChallengeService needs. Submissions
// and Now are optional.
type ChallengeServiceDeps struct {
	Games       store.GameStore
	Challenges  store.ChallengeStore
	Images      ImageSource
	Finalizer   *Finalizer
	MinDwell    time.Duration
	Submissions SubmissionRecorder
	Now         func() time.Time
}

type challengeServiceImpl struct {
	games       store.GameStore
	challenges  store.ChallengeStore
	images      ImageSource
	finalizer   *Finalizer
	minDwell    time.Duration
	submissions SubmissionRecorder
	now         func() time.Time
	logger      *slog.Logger
}

// NewChallengeService creates a new ChallengeService.
// It returns an error if any of the required dependencies are nil.
func NewChallengeService(deps ChallengeServiceDeps, logger *slog.Logger) (ChallengeService, error) {
	switch {
	case deps.Games == nil:
		return nil, domain.NewValidationError("games", "cannot be nil", domain.ErrValidation)
	case deps.Challenges == nil:
		return nil, domain.NewValidationError("challenges", "cannot be nil", domain.ErrValidation)
	case deps.Images == nil:
		return nil, domain.NewValidationError("images", "cannot be nil", domain.ErrValidation)
	case deps.Finalizer == nil:
		return nil, domain.NewValidationError("finalizer", "cannot be nil", domain.ErrValidation)
	case deps.MinDwell < 0:
		return nil, domain.NewValidationError("min_dwell", "cannot be negative", domain.ErrValidation)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &challengeServiceImpl{
		games:       deps.Games,
		challenges:  deps.Challenges,
		images:      deps.Images,
		finalizer:   deps.Finalizer,
		minDwell:    deps.MinDwell,
		submissions: deps.Submissions,
		now:         deps.Now,
		logger:      logger.With(slog.String("component", "challenge_service")),
	}, nil
}

// FetchContent implements ChallengeService.FetchContent
func (s *challengeServiceImpl) FetchContent(ctx context.Context, challengeID int64) (*images.Image, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("challenge_id", challengeID))

	detail, err := s.challenges.GetDetail(ctx, challengeID)
	if err != nil {
		return nil, NewServiceError("fetch_content", "failed to load challenge", err)
	}

	img, err := s.images.Open(ctx, detail.Core)
	if err != nil {
		if errors.Is(err, images.ErrImageNotFound) {
			log.Error("core image missing", slog.Int64("core_id", detail.Core.ID))
			return nil, ErrImageNotFound
		}
		return nil, NewServiceError("fetch_content", "failed to open image", err)
	}

	started, err := s.challenges.MarkStarted(ctx, challengeID, s.now().UTC())
	if err != nil {
		_ = img.Body.Close()
		return nil, NewServiceError("fetch_content", "failed to start challenge", err)
	}
	if started {
		log.Debug("challenge started")
	}
	return img, nil
}

// Submit implements ChallengeService.Submit
func (s *challengeServiceImpl) Submit(ctx context.Context, challengeID int64, guess int) (*domain.Challenge, error) {
	if !domain.ValidGuess(guess) {
		return nil, domain.ErrInvalidGuess
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("challenge_id", challengeID))

	detail, err := s.challenges.GetDetail(ctx, challengeID)
	if err != nil {
		return nil, NewServiceError("submit", "failed to load challenge", err)
	}
	if detail.Game.IsFinished() {
		return nil, ErrGameFinished
	}
	if !detail.Challenge.IsStarted() {
		return nil, ErrChallengeNotStarted
	}

	now := s.now().UTC()
	if now.Sub(*detail.Challenge.StartedAt) < s.minDwell {
		log.Debug("submission before minimum dwell",
			slog.Duration("elapsed", now.Sub(*detail.Challenge.StartedAt)))
		return nil, ErrSubmissionTooEarly
	}

	points := scoring.Score(guess, detail.Core.Score)
	n, err := s.challenges.Submit(ctx, store.Submission{
		ChallengeID: challengeID,
		Guess:       guess,
		Points:      points,
		SubmittedAt: now,
	})
	if err != nil {
		return nil, NewServiceError("submit", "failed to record guess", err)
	}
	switch {
	case n == 0:
		return nil, ErrChallengeAlreadyScored
	case n > 1:
		log.Error("guess recorded on more than one row", slog.Int64("rows", n))
		return nil, NewServiceError("submit", fmt.Sprintf("%d rows updated", n), domain.ErrInvariantViolation)
	}

	if s.submissions != nil {
		s.submissions.RecordSubmission(points)
	}
	log.Debug("guess recorded", slog.Int("guess", guess), slog.Int("points", points))

	// The guess is committed; finalization must not depend on the client
	// staying connected.
	s.finalizer.TryFinalize(context.WithoutCancel(ctx), detail.Game.ID)

	c := *detail.Challenge
	c.Guess = &guess
	c.Points = &points
	c.SubmittedAt = &now
	return &c, nil
}

// Current implements ChallengeService.Current
func (s *challengeServiceImpl) Current(ctx context.Context, gameID int64, completedCount int) (*CurrentChallenge, error) {
	if completedCount < 0 {
		return nil, domain.NewValidationError("completed_count", "cannot be negative", nil)
	}
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, NewServiceError("current_challenge", "failed to get game", err)
	}

	challenges, err := s.challenges.ListByGame(ctx, gameID)
	if err != nil {
		return nil, NewServiceError("current_challenge", "failed to list challenges", err)
	}

	out := &CurrentChallenge{TotalChallenges: len(challenges)}
	var unanswered []*domain.Challenge
	for _, c := range challenges {
		if c.IsAnswered() {
			out.CompletedChallenges++
		} else {
			unanswered = append(unanswered, c)
		}
	}
	if completedCount < len(unanswered) {
		next := unanswered[completedCount]
		out.ID = &next.ID
		out.CoreID = &next.CoreID
	}
	return out, nil
}
