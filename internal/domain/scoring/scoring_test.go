package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Matrix(t *testing.T) {
	t.Parallel()

	expected := map[[2]int]int{
		{0, 0}: 5, {0, 1}: -2, {0, 2}: -3, {0, 3}: -5,
		{1, 0}: -1, {1, 1}: 5, {1, 2}: -2, {1, 3}: -3,
		{2, 0}: -2, {2, 1}: -1, {2, 2}: 5, {2, 3}: -1,
		{3, 0}: -4, {3, 1}: -2, {3, 2}: -1, {3, 3}: 5,
	}

	for guess := 0; guess <= 3; guess++ {
		for truth := 0; truth <= 3; truth++ {
			assert.Equal(t, expected[[2]int{guess, truth}], Score(guess, truth),
				"guess=%d truth=%d", guess, truth)
		}
	}
}

func TestScore_OutOfRange(t *testing.T) {
	t.Parallel()

	cases := [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 4}, {-7, 12}, {100, 100}}
	for _, c := range cases {
		assert.Equal(t, MaxPenalty, Score(c[0], c[1]), "guess=%d truth=%d", c[0], c[1])
	}
}

func TestScore_DiagonalIsOnlyFullCredit(t *testing.T) {
	t.Parallel()

	for guess := 0; guess <= 3; guess++ {
		for truth := 0; truth <= 3; truth++ {
			if guess == truth {
				assert.Equal(t, 5, Score(guess, truth))
			} else {
				assert.Less(t, Score(guess, truth), 0)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		points int
		want   Category
		ok     bool
	}{
		{-5, CategorySevere, true},
		{-4, CategorySevere, true},
		{-3, CategorySevere, true},
		{-2, CategoryModerate, true},
		{-1, CategoryMild, true},
		{5, CategoryCorrect, true},
		{0, "", false},
		{3, "", false},
	}

	for _, tt := range tests {
		got, ok := Classify(tt.points)
		assert.Equal(t, tt.want, got, "points=%d", tt.points)
		assert.Equal(t, tt.ok, ok, "points=%d", tt.points)
	}
}

func TestClassify_CoversEveryMatrixValue(t *testing.T) {
	t.Parallel()

	for guess := 0; guess <= 3; guess++ {
		for truth := 0; truth <= 3; truth++ {
			_, ok := Classify(Score(guess, truth))
			assert.True(t, ok, "guess=%d truth=%d", guess, truth)
		}
	}
}
