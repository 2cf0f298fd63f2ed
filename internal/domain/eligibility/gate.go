// Package eligibility decides whether a user may start a game of a given
// mode, based on how many games of each mode they have already started.
package eligibility

import "github.com/biogames/biogames-api/internal/domain"

// Decision is the outcome of an eligibility check.
type Decision struct {
	Allowed bool

	// Resume is set when the request was denied because a game of the
	// requested mode already exists, so the caller should hand that game
	// back instead of a bare refusal.
	Resume bool
}

// Policy evaluates a requested mode against a user's per-mode counts.
type Policy interface {
	Decide(mode domain.Mode, counts domain.ModeCounts) Decision
}

// SequentialPolicy enforces pretest, then TrainingLimit training games,
// then a single posttest.
type SequentialPolicy struct {
	TrainingLimit int
}

// NewSequentialPolicy returns a SequentialPolicy with the given limit.
func NewSequentialPolicy(trainingLimit int) SequentialPolicy {
	return SequentialPolicy{TrainingLimit: trainingLimit}
}

// Decide implements Policy.
func (p SequentialPolicy) Decide(mode domain.Mode, c domain.ModeCounts) Decision {
	switch mode {
	case domain.ModePretest:
		if c.Pretest == 0 {
			return Decision{Allowed: true}
		}
		return Decision{Resume: true}
	case domain.ModeTraining:
		return Decision{Allowed: c.Pretest > 0 && c.Training < p.TrainingLimit}
	case domain.ModePosttest:
		if c.Pretest > 0 && c.Training >= p.TrainingLimit && c.Posttest == 0 {
			return Decision{Allowed: true}
		}
		return Decision{Resume: c.Posttest > 0}
	default:
		return Decision{Allowed: true}
	}
}

// OpenPolicy admits every request.
type OpenPolicy struct{}

// Decide implements Policy.
func (OpenPolicy) Decide(domain.Mode, domain.ModeCounts) Decision {
	return Decision{Allowed: true}
}
