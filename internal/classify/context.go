package classify

import "strings"

// BuildContext assembles the immutable per-ply MoveContext (C4). best_move
// and top_moves are read from analysis_before — the engine's judgement of
// the position the mover actually faced — while eval_after is simply the
// resulting evaluation once the move was played. fen_after is computed by
// applying the played move; if that fails, fen_after falls back to
// fen_before and downstream detectors degrade gracefully (per §7).
func BuildContext(fenBefore, playedSAN, playedUCI string, isWhiteMove bool, analysisBefore, analysisAfter *EngineAnalysis, applyMove func(uci string) (fenAfter string, ok bool), moveNumber int) MoveContext {
	fenAfter := fenBefore
	if applyMove != nil {
		if after, ok := applyMove(playedUCI); ok {
			fenAfter = after
		}
	}

	ctx := MoveContext{
		FENBefore:   fenBefore,
		FENAfter:    fenAfter,
		PlayedSAN:   playedSAN,
		PlayedUCI:   playedUCI,
		IsWhiteMove: isWhiteMove,
		MoveNumber:  moveNumber,
	}

	if analysisBefore != nil {
		ctx.EvalBefore = analysisBefore.Evaluation
		ctx.BestMoveUCI = analysisBefore.BestMove
		ctx.TopMoves = analysisBefore.TopMoves
	}
	if analysisAfter != nil {
		ctx.EvalAfter = analysisAfter.Evaluation
	}

	ctx.IsInTopMoves = false
	for _, tm := range ctx.TopMoves {
		if strings.EqualFold(tm.UCI, playedUCI) {
			ctx.IsInTopMoves = true
			break
		}
	}

	switch {
	case findTopMove(ctx.TopMoves, ctx.BestMoveUCI) != nil:
		ctx.EvalIfBestMove = findTopMove(ctx.TopMoves, ctx.BestMoveUCI).CP
	case len(ctx.TopMoves) > 0:
		ctx.EvalIfBestMove = ctx.TopMoves[0].CP
	default:
		ctx.EvalIfBestMove = ctx.EvalAfter
		ctx.IsEvalIfBestUnreliable = true
	}

	return ctx
}

func findTopMove(moves []TopMove, uci string) *TopMove {
	if uci == "" {
		return nil
	}
	for i := range moves {
		if strings.EqualFold(moves[i].UCI, uci) {
			return &moves[i]
		}
	}
	return nil
}
