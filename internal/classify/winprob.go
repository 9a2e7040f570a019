package classify

import "math"

// EvalToWinProbability converts a centipawn evaluation to a winning
// probability via the logistic curve lichess-style accuracy pipelines use.
func EvalToWinProbability(centipawns int) float64 {
	exponent := float64(-centipawns) / 400.0
	return 1.0 / (1.0 + math.Pow(10, exponent))
}

// WinProbabilityToElo converts a win-probability difference into an Elo
// difference, the inverse of the logistic curve above.
func WinProbabilityToElo(winProbDiff float64) float64 {
	if winProbDiff <= 0 {
		return -400.0
	}
	if winProbDiff >= 1 {
		return 400.0
	}
	return 400.0 * math.Log10(winProbDiff/(1-winProbDiff))
}

// CalculateT1Accuracy implements Lichess's T1 ACPL-to-accuracy curve. This
// is a secondary diagnostic carried alongside the spec's own accuracy
// formula (100 * 0.995^min(cp_loss,200) per move, averaged) — it is not
// what ReviewResult.Accuracy reports, but a second number the driver can
// expose for players used to the Lichess scale.
func CalculateT1Accuracy(acpl float64) float64 {
	if acpl <= 0 {
		return 100.0
	}
	accuracy := 103.1668*math.Exp(-0.04354*acpl) - 3.1669
	return math.Max(0, math.Min(100, accuracy))
}

// CalculatePerformanceRating estimates a performance rating from an
// opponent's rating, this game's accuracy, and the result.
func CalculatePerformanceRating(opponentRating int, accuracy float64, won *bool) int {
	const accuracyWeight = 8.0
	baseRating := float64(opponentRating)
	accuracyBonus := (accuracy - 50.0) * accuracyWeight

	var resultBonus float64
	switch {
	case won == nil:
		resultBonus = 0
	case *won:
		resultBonus = 400
	default:
		resultBonus = -400
	}

	return int(math.Round(baseRating + accuracyBonus + resultBonus))
}

// CalculateComplexity estimates how sharp a position was from the spread
// of its top engine lines: the result is the standard deviation of the
// evals, so a narrow spread means many roughly-equal tries and a wide one
// means the position tolerates only a single best move.
func CalculateComplexity(topEvals []int) float64 {
	if len(topEvals) < 2 {
		return 0.0
	}
	var sum, sumSq float64
	for _, e := range topEvals {
		sum += float64(e)
		sumSq += float64(e * e)
	}
	n := float64(len(topEvals))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
