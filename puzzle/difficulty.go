package puzzle

import "jigsaw-local/types"

// CalculateDifficultyFromConfig rates a puzzle from 1 to 5 by piece count and
// the share of non-flat boundaries. The thresholds match ratings already
// stored in saved puzzles and must not drift.
func CalculateDifficultyFromConfig(grid types.GridConfig, boundaries []types.Boundary) int {
	score := pieceCountScore(grid.TotalPieces()) + complexityScore(ComplexityRatio(boundaries))
	switch {
	case score <= 20:
		return 1
	case score <= 40:
		return 2
	case score <= 60:
		return 3
	case score <= 80:
		return 4
	}
	return 5
}

// ComplexityRatio is the fraction of boundaries that are not flat.
func ComplexityRatio(boundaries []types.Boundary) float64 {
	if len(boundaries) == 0 {
		return 0
	}
	complex := 0
	for _, b := range boundaries {
		if b.State != types.Flat {
			complex++
		}
	}
	return float64(complex) / float64(len(boundaries))
}

func pieceCountScore(total int) int {
	switch {
	case total <= 9:
		return 10
	case total <= 16:
		return 20
	case total <= 25:
		return 30
	case total <= 49:
		return 40
	case total <= 100:
		return 50
	}
	return 60
}

func complexityScore(ratio float64) int {
	switch {
	case ratio <= 0.1:
		return 5
	case ratio <= 0.3:
		return 15
	case ratio <= 0.5:
		return 25
	case ratio <= 0.7:
		return 35
	}
	return 40
}
