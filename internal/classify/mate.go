package classify

import "strings"

// MateInput carries the extra per-ply facts the mate sequence handler
// needs beyond MoveContext: whether the played move was the only legal
// response, and whether it was otherwise forced (the orchestrator sets
// this when the move was the only legal one or the mover was in check).
type MateInput struct {
	SAN           string
	EvalBefore    Score
	EvalAfter     Score
	EvalIfBest    Score
	IsWhiteMove   bool
	OnlyLegalMove bool
	WasForced     bool
}

// ClassifyMate applies the seven mate-sequence rules in order and returns
// the first one that fires. ok is false when none of the rules apply,
// meaning "mate handling does not apply" — the cascade must continue, not
// "inconclusive".
func ClassifyMate(in MateInput) (marker MarkerType, cpLoss int, ok bool) {
	if strings.HasSuffix(in.SAN, "#") {
		return Best, 0, true
	}

	afterMate, afterForPlayer, afterDist := mateFacts(in.EvalAfter, in.IsWhiteMove)
	beforeMate, beforeForPlayer, beforeDist := mateFacts(in.EvalBefore, in.IsWhiteMove)
	bestMate, bestForPlayer, bestDist := mateFacts(in.EvalIfBest, in.IsWhiteMove)

	// Rule 2: eval_after is mate for the opponent, and the player did not
	// already face that mate before the move — handing it over now.
	if afterMate && !afterForPlayer {
		hadItAlready := beforeMate && !beforeForPlayer
		if !hadItAlready {
			return Blunder, 1000, true
		}
	}

	// Rule 3: the player was already facing a forced mate before moving.
	if beforeMate && !beforeForPlayer {
		switch {
		case strings.HasSuffix(in.SAN, "#"):
			return Best, 0, true
		case afterMate && afterForPlayer:
			return Best, 0, true
		case in.OnlyLegalMove:
			return Best, 0, true
		default:
			return Good, 0, true
		}
	}

	// Rule 4: both the actual result and the best available move are
	// mates for the player — grade how much slower the actual mate is.
	if afterMate && bestMate {
		if afterForPlayer != bestForPlayer {
			return Blunder, 1000, true
		}
		if afterForPlayer {
			diff := afterDist - bestDist
			switch {
			case diff <= 0:
				return Best, 0, true
			case diff <= 2:
				return Good, 50, true
			case diff <= 4:
				return Inaccuracy, 150, true
			default:
				return Mistake, 250, true
			}
		}
	}

	// Rule 5: both before and after are mate scores.
	if beforeMate && afterMate {
		if beforeForPlayer == afterForPlayer {
			if afterForPlayer {
				diff := afterDist - beforeDist
				switch {
				case diff <= 0:
					return Best, 0, true
				case diff <= 2:
					return Good, 50, true
				case diff <= 4:
					return Inaccuracy, 150, true
				default:
					return Mistake, 250, true
				}
			}
			return Good, 0, true
		}
		if !in.WasForced {
			return 0, 0, false
		}
		return Best, 0, true
	}

	// Rule 6: the player had a mate and let it slip.
	if beforeMate && beforeForPlayer && !afterMate {
		after := in.EvalAfter.ToPlayerPerspective(in.IsWhiteMove)
		switch {
		case int(after) >= 500:
			return Inaccuracy, 100, true
		case int(after) >= 200:
			return Mistake, 150, true
		default:
			return 0, 0, false
		}
	}

	// Rule 7: the player just found a mate that was not previously there.
	if afterMate && afterForPlayer && !beforeMate {
		if in.WasForced {
			return Best, 0, true
		}
		return 0, 0, false
	}

	return 0, 0, false
}

// mateFacts normalizes s to the mover's perspective and reports whether
// it is a mate score, whether that mate favors the mover, and the
// (positive) distance.
func mateFacts(s Score, isWhiteMove bool) (isMate, forPlayer bool, distance int) {
	p := s.ToPlayerPerspective(isWhiteMove)
	if !p.IsMate() {
		return false, false, 0
	}
	d := p.MateIn()
	if d < 0 {
		return true, false, -d
	}
	return true, true, d
}
