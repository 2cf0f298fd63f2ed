package service

import (
	"fmt"
	"time"

	"github.com/biogames/biogames-api/internal/config"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/domain/eligibility"
)

// GameRules sizes games and paces submissions.
type GameRules struct {
	TrainingChallenges int
	TestChallenges     int
	MinDwell           time.Duration
}

// RulesFromConfig copies the game rules out of cfg.
func RulesFromConfig(cfg config.GameConfig) GameRules {
	return GameRules{
		TrainingChallenges: cfg.TrainingChallenges,
		TestChallenges:     cfg.TestChallenges,
		MinDwell:           cfg.MinDwell,
	}
}

// ChallengeCount returns how many challenges a game of mode holds.
func (r GameRules) ChallengeCount(mode domain.Mode) int {
	if mode.IsEvaluation() {
		return r.TestChallenges
	}
	return r.TrainingChallenges
}

// NewEligibilityPolicy returns the policy named by cfg.EligibilityPolicy.
func NewEligibilityPolicy(cfg config.GameConfig) (eligibility.Policy, error) {
	switch cfg.EligibilityPolicy {
	case config.PolicySequential:
		return eligibility.NewSequentialPolicy(cfg.TrainingLimit), nil
	case config.PolicyOpen:
		return eligibility.OpenPolicy{}, nil
	default:
		return nil, domain.NewValidationError("eligibility_policy",
			fmt.Sprintf("unknown policy %q", cfg.EligibilityPolicy), domain.ErrValidation)
	}
}
