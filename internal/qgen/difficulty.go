package qgen

// Difficulty labels a question by how many skills it combines.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ClassifyDifficulty maps the number of distinct requested skills to a
// label: 1 is easy, 2 is medium, 3 or more is hard.
func ClassifyDifficulty(skills int) Difficulty {
	switch {
	case skills >= 3:
		return DifficultyHard
	case skills == 2:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}
