// Package memstore is an in-memory implementation of the store interfaces.
// Every operation holds a single lock, so the guarded single-shot writes
// (submission, finalization, username assignment) keep their at-most-once
// semantics under concurrent use. WithTx returns the same store: there is
// no rollback, which makes it suitable for tests of success paths and of
// concurrency, not of transactional failure handling.
package memstore

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/store"
)

// DB holds all entities.
type DB struct {
	mu         sync.Mutex
	cores      map[int64]*domain.Core
	users      map[string]*domain.User
	games      map[int64]*domain.Game
	challenges map[int64]*domain.Challenge
	nextID     int64
}

// New returns an empty DB.
func New() *DB {
	return &DB{
		cores:      make(map[int64]*domain.Core),
		users:      make(map[string]*domain.User),
		games:      make(map[int64]*domain.Game),
		challenges: make(map[int64]*domain.Challenge),
	}
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

// AddCore seeds a core with the given ID and ground truth.
func (db *DB) AddCore(id int64, score int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.cores[id] = &domain.Core{
		ID:        id,
		Score:     score,
		FileName:  "core.png",
		CreatedAt: time.Now().UTC(),
	}
}

// AddUser seeds a registered user. An empty username leaves it unset.
func (db *DB) AddUser(userID, username string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &domain.User{ID: db.id(), UserID: userID}
	if username != "" {
		name := username
		u.Username = &name
	}
	db.users[userID] = u
}

// AddFinishedGame seeds a finished game with the given aggregates and
// returns its ID.
func (db *DB) AddFinishedGame(
	userID, username string,
	mode domain.Mode,
	score int,
	timeTakenMS int64,
	finishedAt time.Time,
) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	at := finishedAt.UTC()
	g := &domain.Game{
		ID:          db.id(),
		UserID:      userID,
		Username:    username,
		Mode:        mode,
		StartedAt:   at.Add(-time.Duration(timeTakenMS) * time.Millisecond),
		FinishedAt:  &at,
		Score:       &score,
		MaxScore:    100,
		TimeTakenMS: &timeTakenMS,
	}
	db.games[g.ID] = g
	return g.ID
}

// Challenge returns a copy of a stored challenge, or nil.
func (db *DB) Challenge(id int64) *domain.Challenge {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.challenges[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Games returns a GameStore over db.
func (db *DB) Games() store.GameStore { return gameStore{db} }

// Challenges returns a ChallengeStore over db.
func (db *DB) Challenges() store.ChallengeStore { return challengeStore{db} }

// Cores returns a CoreStore over db.
func (db *DB) Cores() store.CoreStore { return coreStore{db} }

// Users returns a UserStore over db.
func (db *DB) Users() store.UserStore { return userStore{db} }

// Leaderboard returns a LeaderboardStore over db.
func (db *DB) Leaderboard() store.LeaderboardStore { return leaderboardStore{db} }

func copyGame(g *domain.Game) *domain.Game {
	cp := *g
	cp.Challenges = nil
	return &cp
}

func (db *DB) gameChallenges(gameID int64) []*domain.Challenge {
	var out []*domain.Challenge
	for _, c := range db.challenges {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type gameStore struct{ db *DB }

func (s gameStore) Create(_ context.Context, game *domain.Game) error {
	if err := game.Validate(); err != nil {
		return store.NewStoreError("game", "create", "invalid game", store.ErrInvalidEntity)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	game.ID = s.db.id()
	s.db.games[game.ID] = copyGame(game)
	return nil
}

func (s gameStore) GetByID(_ context.Context, id int64) (*domain.Game, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.games[id]
	if !ok {
		return nil, store.ErrGameNotFound
	}
	return copyGame(g), nil
}

func (s gameStore) CountByMode(_ context.Context, userID string) (domain.ModeCounts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var c domain.ModeCounts
	for _, g := range s.db.games {
		if g.UserID != userID {
			continue
		}
		switch g.Mode {
		case domain.ModePretest:
			c.Pretest++
		case domain.ModeTraining:
			c.Training++
		case domain.ModePosttest:
			c.Posttest++
		}
	}
	return c, nil
}

func (s gameStore) LatestByMode(_ context.Context, userID string, mode domain.Mode) (*domain.Game, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var latest *domain.Game
	for _, g := range s.db.games {
		if g.UserID != userID || g.Mode != mode {
			continue
		}
		if latest == nil || g.StartedAt.After(latest.StartedAt) ||
			(g.StartedAt.Equal(latest.StartedAt) && g.ID > latest.ID) {
			latest = g
		}
	}
	if latest == nil {
		return nil, store.ErrGameNotFound
	}
	return copyGame(latest), nil
}

func (s gameStore) LockUser(context.Context, string) error { return nil }

// finish sets the aggregate columns. Like SQL SUM, an aggregate with no
// contributing challenge stays nil. Callers hold the lock.
func (db *DB) finish(g *domain.Game, challenges []*domain.Challenge, now time.Time) {
	var (
		total   *int
		elapsed *int64
	)
	for _, c := range challenges {
		if c.Points != nil {
			if total == nil {
				total = new(int)
			}
			*total += *c.Points
		}
		if c.StartedAt != nil && c.SubmittedAt != nil {
			if elapsed == nil {
				elapsed = new(int64)
			}
			*elapsed += c.Elapsed().Milliseconds()
		}
	}
	at := now.UTC()
	g.Score = total
	g.TimeTakenMS = elapsed
	g.FinishedAt = &at
}

func (s gameStore) FinalizeIfComplete(_ context.Context, id int64, now time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.games[id]
	if !ok || g.IsFinished() {
		return false, nil
	}
	challenges := s.db.gameChallenges(id)
	if len(challenges) == 0 {
		return false, nil
	}
	for _, c := range challenges {
		if c.Points == nil {
			return false, nil
		}
	}
	s.db.finish(g, challenges, now)
	return true, nil
}

func (s gameStore) FinishPartial(_ context.Context, id int64, now time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.games[id]
	if !ok || g.IsFinished() {
		return false, nil
	}
	s.db.finish(g, s.db.gameChallenges(id), now)
	return true, nil
}

func (s gameStore) WithTx(*sql.Tx) store.GameStore { return s }

type challengeStore struct{ db *DB }

func (s challengeStore) insert(gameID, coreID int64) *domain.Challenge {
	c := &domain.Challenge{ID: s.db.id(), GameID: gameID, CoreID: coreID}
	s.db.challenges[c.ID] = c
	cp := *c
	return &cp
}

func (s challengeStore) CreateForCore(_ context.Context, gameID, coreID int64) (*domain.Challenge, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.cores[coreID]; !ok {
		return nil, store.ErrCoreNotFound
	}
	return s.insert(gameID, coreID), nil
}

func (s challengeStore) AllocateRandom(
	_ context.Context,
	gameID int64,
	partition store.CorePartition,
	exclude []int64,
	limit int,
) ([]*domain.Challenge, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	listed := make(map[int64]bool, len(partition.IDs))
	for _, id := range partition.IDs {
		listed[id] = true
	}
	skip := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var candidates []int64
	for id := range s.db.cores {
		if listed[id] == partition.Include && !skip[id] {
			candidates = append(candidates, id)
		}
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*domain.Challenge, 0, len(candidates))
	for _, coreID := range candidates {
		out = append(out, s.insert(gameID, coreID))
	}
	return out, nil
}

func (s challengeStore) GetDetail(_ context.Context, id int64) (*domain.ChallengeDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.challenges[id]
	if !ok {
		return nil, store.ErrChallengeNotFound
	}
	cp := *c
	core := *s.db.cores[c.CoreID]
	return &domain.ChallengeDetail{
		Challenge: &cp,
		Game:      copyGame(s.db.games[c.GameID]),
		Core:      &core,
	}, nil
}

func (s challengeStore) ListByGame(_ context.Context, gameID int64) ([]*domain.Challenge, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Challenge
	for _, c := range s.db.gameChallenges(gameID) {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s challengeStore) ListResults(_ context.Context, gameID int64) ([]store.ChallengeResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []store.ChallengeResult
	for _, c := range s.db.gameChallenges(gameID) {
		cp := *c
		out = append(out, store.ChallengeResult{Challenge: &cp, Truth: s.db.cores[c.CoreID].Score})
	}
	return out, nil
}

func (s challengeStore) MarkStarted(_ context.Context, id int64, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.challenges[id]
	if !ok || c.StartedAt != nil {
		return false, nil
	}
	t := at.UTC()
	c.StartedAt = &t
	return true, nil
}

func (s challengeStore) Submit(_ context.Context, sub store.Submission) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.challenges[sub.ChallengeID]
	if !ok || c.Guess != nil {
		return 0, nil
	}
	if g := s.db.games[c.GameID]; g != nil && g.IsFinished() {
		return 0, nil
	}
	guess, points, at := sub.Guess, sub.Points, sub.SubmittedAt.UTC()
	c.Guess = &guess
	c.Points = &points
	c.SubmittedAt = &at
	return 1, nil
}

func (s challengeStore) DeleteUnattempted(_ context.Context, gameID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, c := range s.db.challenges {
		if c.GameID == gameID && c.Guess == nil {
			delete(s.db.challenges, id)
			n++
		}
	}
	return n, nil
}

func (s challengeStore) WithTx(*sql.Tx) store.ChallengeStore { return s }

type coreStore struct{ db *DB }

func (s coreStore) GetByID(_ context.Context, id int64) (*domain.Core, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.cores[id]
	if !ok {
		return nil, store.ErrCoreNotFound
	}
	cp := *c
	return &cp, nil
}

func (s coreStore) RandomID(context.Context) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if len(s.db.cores) == 0 {
		return 0, store.ErrCoreNotFound
	}
	ids := make([]int64, 0, len(s.db.cores))
	for id := range s.db.cores {
		ids = append(ids, id)
	}
	return ids[rand.IntN(len(ids))], nil
}

type userStore struct{ db *DB }

func (s userStore) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s userStore) Create(_ context.Context, user *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[user.UserID]; ok {
		return store.ErrUserExists
	}
	user.ID = s.db.id()
	cp := *user
	s.db.users[user.UserID] = &cp
	return nil
}

func (s userStore) SetUsername(_ context.Context, userID, username string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return false, store.ErrUserNotFound
	}
	if u.Username != nil {
		return false, nil
	}
	name := username
	u.Username = &name
	return true, nil
}

func (s userStore) WithTx(*sql.Tx) store.UserStore { return s }

type leaderboardStore struct{ db *DB }

func (s leaderboardStore) BestTrainingSessions(context.Context) ([]domain.LeaderboardEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	best := make(map[string]domain.LeaderboardEntry)
	for _, g := range s.db.games {
		if g.Mode != domain.ModeTraining || g.FinishedAt == nil || g.Score == nil || g.TimeTakenMS == nil {
			continue
		}
		e := domain.LeaderboardEntry{
			UserID:      g.UserID,
			Username:    g.Username,
			Score:       *g.Score,
			TimeTakenMS: *g.TimeTakenMS,
			Timestamp:   *g.FinishedAt,
		}
		if cur, ok := best[g.UserID]; !ok || e.RanksBefore(cur) {
			best[g.UserID] = e
		}
	}
	out := make([]domain.LeaderboardEntry, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	domain.SortLeaderboard(out)
	return out, nil
}
