// Package scoring implements the confusion-matrix scoring of a single
// HER2 guess against the ground truth of a core.
package scoring

// MaxPenalty is returned for any guess or truth outside the 0-3 scale.
const MaxPenalty = -5

// matrix is indexed [guess][truth].
var matrix = [4][4]int{
	{5, -2, -3, -5},
	{-1, 5, -2, -3},
	{-2, -1, 5, -1},
	{-4, -2, -1, 5},
}

// Score returns the points awarded for guess when the core's true score is
// truth. Out-of-range inputs never fail; they yield MaxPenalty.
func Score(guess, truth int) int {
	if guess < 0 || guess > 3 || truth < 0 || truth > 3 {
		return MaxPenalty
	}
	return matrix[guess][truth]
}

// Category buckets a points value for result display.
type Category string

// Result categories.
const (
	CategorySevere   Category = "severe"
	CategoryModerate Category = "moderate"
	CategoryMild     Category = "mild"
	CategoryCorrect  Category = "correct"
)

// Classify maps points to a Category. The second return value is false for
// values that belong to no bucket, which the matrix never produces.
func Classify(points int) (Category, bool) {
	switch {
	case points <= -3:
		return CategorySevere, true
	case points == -2:
		return CategoryModerate, true
	case points == -1:
		return CategoryMild, true
	case points == 5:
		return CategoryCorrect, true
	default:
		return "", false
	}
}
