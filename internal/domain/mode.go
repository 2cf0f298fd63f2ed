package domain

import "strings"

// Mode identifies which phase of the training programme a game belongs to.
type Mode string

// The three sequential modes.
const (
	ModePretest  Mode = "pretest"
	ModeTraining Mode = "training"
	ModePosttest Mode = "posttest"
)

// ParseMode maps a raw mode string to a Mode. The second return value
// reports whether the string named one of the known modes; callers decide
// what to do with unknown values.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModePretest:
		return ModePretest, true
	case ModeTraining:
		return ModeTraining, true
	case ModePosttest:
		return ModePosttest, true
	default:
		return Mode(raw), false
	}
}

// IsEvaluation reports whether the mode draws from the held-out
// evaluation set.
func (m Mode) IsEvaluation() bool {
	return m == ModePretest || m == ModePosttest
}

// ModeCounts holds how many games a user has started in each mode.
type ModeCounts struct {
	Pretest  int `json:"pretest"`
	Training int `json:"training"`
	Posttest int `json:"posttest"`
}

// Of returns the count for the given mode. Unknown modes count as zero.
func (c ModeCounts) Of(m Mode) int {
	switch m {
	case ModePretest:
		return c.Pretest
	case ModeTraining:
		return c.Training
	case ModePosttest:
		return c.Posttest
	default:
		return 0
	}
}
