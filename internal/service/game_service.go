package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/domain/eligibility"
	"github.com/biogames/biogames-api/internal/domain/scoring"
	"github.com/biogames/biogames-api/internal/events"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/service/allocation"
	"github.com/biogames/biogames-api/internal/store"
)

// CreateGameRequest asks for a new game. An empty or unknown Mode means training.
type CreateGameRequest struct {
	UserID        string
	Mode          string
	InitialCoreID *int64
}

// ResultItem is one answered challenge in a results report.
type ResultItem struct {
	ChallengeID  int64   `json:"challenge_id"`
	Guess        int     `json:"guess"`
	CorrectScore int     `json:"correct_score"`
	Seconds      float64 `json:"seconds"`
	Points       int     `json:"points"`
}

// GameResults groups answered challenges by how far off the guess was.
type GameResults struct {
	SevereMistakes   []ResultItem `json:"severe_mistakes"`
	ModerateMistakes []ResultItem `json:"moderate_mistakes"`
	MildMistakes     []ResultItem `json:"mild_mistakes"`
	Correct          []ResultItem `json:"correct"`
}

func newGameResults() GameResults {
	return GameResults{
		SevereMistakes:   []ResultItem{},
		ModerateMistakes: []ResultItem{},
		MildMistakes:     []ResultItem{},
		Correct:          []ResultItem{},
	}
}

func (r *GameResults) add(item ResultItem) {
	category, _ := scoring.Classify(item.Points)
	switch category {
	case scoring.CategorySevere:
		r.SevereMistakes = append(r.SevereMistakes, item)
	case scoring.CategoryModerate:
		r.ModerateMistakes = append(r.ModerateMistakes, item)
	case scoring.CategoryMild:
		r.MildMistakes = append(r.MildMistakes, item)
	case scoring.CategoryCorrect:
		r.Correct = append(r.Correct, item)
	}
}

// GameReport is a game together with its grouped results.
type GameReport struct {
	Game        *domain.Game
	Results     GameResults
	TotalPoints int
}

// DenialRecorder is notified when the eligibility gate rejects a request.
type DenialRecorder interface {
	RecordDenied(mode domain.Mode)
}

// GameService manages the lifecycle of game sessions.
type GameService interface {
	// CreateGame gates, creates and populates a new game in one transaction.
	CreateGame(ctx context.Context, req CreateGameRequest) (*domain.Game, error)

	// GetResults reports the answered challenges of a game.
	GetResults(ctx context.Context, gameID int64) (*GameReport, error)

	// QuitGame finishes a game early, scoring what was answered and
	// discarding the rest.
	QuitGame(ctx context.Context, gameID int64) (*domain.Game, error)

	// GameCounts returns how many games the user has started per mode.
	GameCounts(ctx context.Context, userID string) (domain.ModeCounts, error)
}

// GameServiceDeps lists what a GameService needs. Emitter, Denials and Now
// are optional.
type GameServiceDeps struct {
	DB         *sql.DB
	Games      store.GameStore
	Challenges store.ChallengeStore
	Users      store.UserStore
	Policy     eligibility.Policy
	Resolver   UserResolver
	Allocator  *allocation.Allocator
	Rules      GameRules
	Emitter    events.EventEmitter
	Denials    DenialRecorder
	Now        func() time.Time
}

type gameServiceImpl struct {
	db         *sql.DB
	games      store.GameStore
	challenges store.ChallengeStore
	users      store.UserStore
	policy     eligibility.Policy
	resolver   UserResolver
	allocator  *allocation.Allocator
	rules      GameRules
	emitter    events.EventEmitter
	denials    DenialRecorder
	now        func() time.Time
	logger     *slog.Logger
}

// NewGameService creates a new GameService.
// It returns an error if any of the required dependencies are nil.
func NewGameService(deps GameServiceDeps, logger *slog.Logger) (GameService, error) {
	switch {
	case deps.DB == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case deps.Games == nil:
		return nil, domain.NewValidationError("games", "cannot be nil", domain.ErrValidation)
	case deps.Challenges == nil:
		return nil, domain.NewValidationError("challenges", "cannot be nil", domain.ErrValidation)
	case deps.Users == nil:
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	case deps.Policy == nil:
		return nil, domain.NewValidationError("policy", "cannot be nil", domain.ErrValidation)
	case deps.Resolver == nil:
		return nil, domain.NewValidationError("resolver", "cannot be nil", domain.ErrValidation)
	case deps.Allocator == nil:
		return nil, domain.NewValidationError("allocator", "cannot be nil", domain.ErrValidation)
	case deps.Rules.TrainingChallenges <= 0 || deps.Rules.TestChallenges <= 0:
		return nil, domain.NewValidationError("rules", "challenge counts must be positive", domain.ErrValidation)
	}

	if deps.Emitter == nil {
		deps.Emitter = events.NopEmitter{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &gameServiceImpl{
		db:         deps.DB,
		games:      deps.Games,
		challenges: deps.Challenges,
		users:      deps.Users,
		policy:     deps.Policy,
		resolver:   deps.Resolver,
		allocator:  deps.Allocator,
		rules:      deps.Rules,
		emitter:    deps.Emitter,
		denials:    deps.Denials,
		now:        deps.Now,
		logger:     logger.With(slog.String("component", "game_service")),
	}, nil
}

// CreateGame implements GameService.CreateGame
func (s *gameServiceImpl) CreateGame(ctx context.Context, req CreateGameRequest) (*domain.Game, error) {
	if req.UserID == "" {
		return nil, domain.ErrEmptyUserID
	}
	mode, ok := domain.ParseMode(req.Mode)
	if !ok {
		mode = domain.ModeTraining
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", req.UserID),
		slog.String("mode", string(mode)))

	username, err := s.resolver.Resolve(ctx, s.users, req.UserID)
	if err != nil {
		log.Debug("could not resolve user", redact.Attr(err))
		return nil, NewServiceError("create_game", "failed to resolve user", err)
	}

	count := s.rules.ChallengeCount(mode)
	var game *domain.Game

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txGames := s.games.WithTx(tx)

		if err := txGames.LockUser(ctx, req.UserID); err != nil {
			return err
		}
		counts, err := txGames.CountByMode(ctx, req.UserID)
		if err != nil {
			return err
		}

		decision := s.policy.Decide(mode, counts)
		if !decision.Allowed {
			denied := &EligibilityError{Mode: mode}
			if decision.Resume {
				latest, err := txGames.LatestByMode(ctx, req.UserID, mode)
				if err != nil && !errors.Is(err, store.ErrGameNotFound) {
					return err
				}
				if latest != nil {
					denied.ResumeGameID = &latest.ID
				}
			}
			return denied
		}

		g, err := domain.NewGame(req.UserID, username, mode, count)
		if err != nil {
			return domain.NewValidationError("game", err.Error(), domain.ErrValidation)
		}
		g.StartedAt = s.now().UTC()
		if err := txGames.Create(ctx, g); err != nil {
			return err
		}

		challenges, err := s.allocator.Allocate(ctx, s.challenges.WithTx(tx), g, count, req.InitialCoreID)
		if err != nil {
			return err
		}
		g.Challenges = challenges
		game = g
		return nil
	})
	if err != nil {
		var denied *EligibilityError
		if errors.As(err, &denied) {
			log.Info("game request denied by eligibility gate")
			if s.denials != nil {
				s.denials.RecordDenied(mode)
			}
		}
		return nil, NewServiceError("create_game", "failed to create game", err)
	}

	log.Info("game created",
		slog.Int64("game_id", game.ID),
		slog.Int("challenges", len(game.Challenges)))
	s.emit(ctx, events.TypeGameCreated, game)
	return game, nil
}

// GetResults implements GameService.GetResults
func (s *gameServiceImpl) GetResults(ctx context.Context, gameID int64) (*GameReport, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, NewServiceError("get_results", "failed to get game", err)
	}

	rows, err := s.challenges.ListResults(ctx, gameID)
	if err != nil {
		return nil, NewServiceError("get_results", "failed to list challenges", err)
	}

	report := &GameReport{Game: game, Results: newGameResults()}
	answered := 0
	for _, r := range rows {
		c := r.Challenge
		if !c.IsAnswered() {
			continue
		}
		answered++
		points := scoring.Score(*c.Guess, r.Truth)
		if c.Points != nil {
			points = *c.Points
		}
		report.TotalPoints += points
		report.Results.add(ResultItem{
			ChallengeID:  c.ID,
			Guess:        *c.Guess,
			CorrectScore: r.Truth,
			Seconds:      float64(c.Elapsed().Milliseconds()) / 1000,
			Points:       points,
		})
	}
	if answered == 0 {
		return nil, ErrGameNotScoreable
	}
	return report, nil
}

// QuitGame implements GameService.QuitGame
func (s *gameServiceImpl) QuitGame(ctx context.Context, gameID int64) (*domain.Game, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("game_id", gameID))

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, NewServiceError("quit_game", "failed to get game", err)
	}
	if game.IsFinished() {
		return nil, ErrGameFinished
	}

	var deleted int64
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Unanswered rows go first so the aggregate below is a later
		// statement and sees every guess committed before the delete.
		var err error
		deleted, err = s.challenges.WithTx(tx).DeleteUnattempted(ctx, gameID)
		if err != nil {
			return err
		}
		finished, err := s.games.WithTx(tx).FinishPartial(ctx, gameID, s.now())
		if err != nil {
			return err
		}
		if !finished {
			return ErrGameFinished
		}
		return nil
	})
	if err != nil {
		return nil, NewServiceError("quit_game", "failed to quit game", err)
	}

	game, err = s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, NewServiceError("quit_game", "failed to reload game", err)
	}

	log.Info("game quit", slog.Int64("discarded_challenges", deleted))
	s.emit(ctx, events.TypeGameQuit, game)
	return game, nil
}

// GameCounts implements GameService.GameCounts
func (s *gameServiceImpl) GameCounts(ctx context.Context, userID string) (domain.ModeCounts, error) {
	if userID == "" {
		return domain.ModeCounts{}, domain.ErrEmptyUserID
	}
	counts, err := s.games.CountByMode(ctx, userID)
	if err != nil {
		return domain.ModeCounts{}, NewServiceError("game_counts", "failed to count games", err)
	}
	return counts, nil
}

func (s *gameServiceImpl) emit(ctx context.Context, eventType string, game *domain.Game) {
	if err := s.emitter.EmitEvent(ctx, events.NewGameEvent(eventType, game)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit game event",
			slog.String("event_type", eventType),
			slog.Int64("game_id", game.ID),
			redact.Attr(err))
	}
}
