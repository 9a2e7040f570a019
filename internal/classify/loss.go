package classify

import "math"

// losingPositionPenalty replaces an otherwise-computed loss when the
// mover's evaluation after the move is worse than -100 (player
// perspective) and the move did not improve the evaluation: the position
// is bad enough that the raw cp delta overstates the blame.
const losingPositionPenalty = 15

// losingPositionCeiling is the player-perspective eval_after boundary
// below which the losing-position adjustment can apply.
const losingPositionCeiling = -100

// winnerLossFactor and loserLossFactor temper a non-zero loss toward the
// game's actual outcome.
const (
	winnerLossFactor = 0.9
	loserLossFactor  = 1.1
)

// CentipawnLoss computes the centipawn loss for one ply, in the mover's
// perspective, per the five-step algorithm: an unreliable best-eval with
// the played move already in top_moves falls back to the raw eval swing;
// an unreliable best-eval around a mate score checks whether a mate the
// player already had got no closer to being lost; the reliable path
// diffs eval_if_best_move against eval_after; a losing-position discount
// overrides the figure when the mover had nothing left to lose; and a
// winner/loser adjustment tempers the final non-zero figure before
// clamping into [0, 1000].
func CentipawnLoss(ctx MoveContext) int {
	before := int(ctx.EvalBefore.ToPlayerPerspective(ctx.IsWhiteMove))
	after := int(ctx.EvalAfter.ToPlayerPerspective(ctx.IsWhiteMove))
	best := int(ctx.EvalIfBestMove.ToPlayerPerspective(ctx.IsWhiteMove))

	var loss int
	switch {
	case ctx.IsEvalIfBestUnreliable && ctx.IsInTopMoves:
		loss = absInt(after - before)

	case ctx.IsEvalIfBestUnreliable && (ctx.EvalBefore.IsMate() || ctx.EvalAfter.IsMate()):
		loss = mateUnreliableLoss(ctx, before, after)

	default:
		loss = best - after
		if loss < 0 {
			loss = 0
		}
		loss = Clamp(loss)
	}

	if after < losingPositionCeiling && after <= before {
		loss = losingPositionPenalty
	}

	if ctx.GameWinner != nil && loss != 0 {
		moverWon := *ctx.GameWinner == ctx.IsWhiteMove
		factor := loserLossFactor
		if moverWon {
			factor = winnerLossFactor
		}
		loss = int(math.Round(float64(loss) * factor))
	}

	return Clamp(loss)
}

// mateUnreliableLoss implements step 2: if the mover still has a mate and
// its distance did not grow, the move cost nothing; otherwise the loss is
// the absolute player-perspective eval swing, capped at 1000 by Clamp.
func mateUnreliableLoss(ctx MoveContext, before, after int) int {
	beforeScore := ctx.EvalBefore.ToPlayerPerspective(ctx.IsWhiteMove)
	afterScore := ctx.EvalAfter.ToPlayerPerspective(ctx.IsWhiteMove)

	if beforeScore.IsMate() && afterScore.IsMate() && beforeScore.MateIn() > 0 && afterScore.MateIn() > 0 {
		if afterScore.MateIn() <= beforeScore.MateIn() {
			return 0
		}
	}

	return Clamp(absInt(after - before))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PhaseForgiveness returns the multiplier the orchestrator applies to an
// opening-phase move's loss after CentipawnLoss: book-adjacent plies (ply
// index <= 8) get a small discount since engine-perfect play is less
// meaningful that early.
func PhaseForgiveness(plyIndex int) float64 {
	if plyIndex <= 8 {
		return 0.95
	}
	return 1.0
}
