package classify

import "strings"

// ClassifyTopMove implements the top-move half of C9: when the played
// move appears among analysis_before's top moves, its rank there can
// short-circuit the generic loss->marker mapping. ok is false when the
// played move is not among the top moves at all, or the engine's own
// figures were inconsistent enough to distrust rank 0 — in both cases the
// cascade should fall through to the next stage.
func ClassifyTopMove(ctx MoveContext, cpLoss int, th Thresholds) (MarkerType, bool) {
	idx := topMoveIndex(ctx.TopMoves, ctx.PlayedUCI)
	if idx < 0 {
		return 0, false
	}

	switch idx {
	case 0:
		top0Player := int(ctx.TopMoves[0].CP.ToPlayerPerspective(ctx.IsWhiteMove))
		afterPlayer := int(ctx.EvalAfter.ToPlayerPerspective(ctx.IsWhiteMove))
		if absInt(afterPlayer-top0Player) > 100 {
			return 0, false
		}
		bestCutoff := th.Best
		if bestCutoff < 100 {
			bestCutoff = 100
		}
		if cpLoss <= bestCutoff {
			return Best, true
		}
		return markerFromLoss(cpLoss, th), true

	case 1:
		if cpLoss <= th.Good {
			return Good, true
		}
		return markerFromLoss(cpLoss, th), true

	default:
		return markerFromLoss(cpLoss, th), true
	}
}

func topMoveIndex(moves []TopMove, uci string) int {
	for i, m := range moves {
		if strings.EqualFold(m.UCI, uci) {
			return i
		}
	}
	return -1
}

// markerFromLoss is the fallback loss->marker threshold table (P4).
func markerFromLoss(cpLoss int, th Thresholds) MarkerType {
	switch {
	case cpLoss <= th.Best:
		return Best
	case cpLoss <= th.Good:
		return Good
	case cpLoss <= th.Inaccuracy:
		return Inaccuracy
	case cpLoss <= th.Miss:
		return Miss
	case cpLoss <= th.Mistake:
		return Mistake
	default:
		return Blunder
	}
}
