package classify

import "github.com/chessreview/review/internal/chessrules"

// TierInput is the common shape all five tier detectors read from.
type TierInput struct {
	Move          chessrules.Move
	CentipawnLoss int
	EvalBefore    Score
	EvalAfter     Score
	EvalIfBest    Score
	IsWhiteMove   bool
	MoveNumber    int
	IsMateContext bool // true when either endpoint of this ply is a mate score
	GamePhase     Phase
}

// Phase is the coarse game stage used for phase-forgiveness multipliers.
type Phase int

const (
	PhaseOpening Phase = iota
	PhaseMiddlegame
	PhaseEndgame
)

// TierResult is the common detector output.
type TierResult struct {
	Matched  bool
	Type     string
	Reason   string
	Severity int
}

func noMatch() TierResult { return TierResult{} }

func playerEval(s Score, isWhite bool) int { return int(s.ToPlayerPerspective(isWhite)) }

// DetectGreat implements the Great tier detector.
func DetectGreat(in TierInput) TierResult {
	if in.CentipawnLoss > 30 {
		return noMatch()
	}
	if in.MoveNumber < 5 {
		return noMatch()
	}
	_, forPlayer, dist := mateFacts(in.EvalAfter, in.IsWhiteMove)
	if forPlayer && dist <= 2 {
		return noMatch()
	}
	if absInt(playerEval(in.EvalAfter, in.IsWhiteMove)) >= 10000 {
		return noMatch()
	}

	switch {
	case in.Move.IsCheck && in.CentipawnLoss <= 25:
		return TierResult{Matched: true, Type: "check", Reason: "check within 25cp of best"}
	case in.Move.IsCapture && in.Move.IsCheck && in.CentipawnLoss <= 35:
		return TierResult{Matched: true, Type: "capture_check", Reason: "capture with check within 35cp of best"}
	case in.Move.IsCapture && in.CentipawnLoss <= 30 && evalGain(in) >= 50:
		return TierResult{Matched: true, Type: "winning_capture", Reason: "capture winning material within 30cp of best"}
	// No discovered-attack or pin detection is made here: any move that
	// gains at least 30cp while staying within 30cp of best qualifies.
	case in.CentipawnLoss <= 30 && evalGain(in) >= 30:
		return TierResult{Matched: true, Type: "tactical_bonus", Reason: "evaluation gain of at least 30cp within 30cp of best"}
	default:
		return noMatch()
	}
}

func evalGain(in TierInput) int {
	return playerEval(in.EvalAfter, in.IsWhiteMove) - playerEval(in.EvalBefore, in.IsWhiteMove)
}

// inaccuracyPhaseForgiveness maps game phase to the Inaccuracy detector's
// own distinct leniency multiplier.
func inaccuracyPhaseForgiveness(phase Phase) float64 {
	switch phase {
	case PhaseOpening:
		return 0.8
	case PhaseEndgame:
		return 0.85
	default:
		return 0.9
	}
}

// DetectInaccuracy implements the Inaccuracy tier detector.
func DetectInaccuracy(in TierInput) TierResult {
	loss := float64(in.CentipawnLoss) * inaccuracyPhaseForgiveness(in.GamePhase)
	if loss < 35 || loss >= 100 {
		return noMatch()
	}
	if absInt(playerEval(in.EvalBefore, in.IsWhiteMove)) >= 500 {
		return noMatch()
	}
	if in.MoveNumber < 3 {
		return noMatch()
	}
	return TierResult{Matched: true, Type: "inaccuracy", Reason: "cp loss in the inaccuracy band"}
}

// DetectMiss implements the Miss tier detector.
func DetectMiss(in TierInput) TierResult {
	loss := float64(in.CentipawnLoss) * inaccuracyPhaseForgiveness(in.GamePhase)
	if loss < 100 || loss >= 150 {
		return noMatch()
	}
	before := playerEval(in.EvalBefore, in.IsWhiteMove)
	if before <= -200 || before >= 500 {
		return noMatch()
	}
	if !in.Move.IsCapture && !in.Move.IsCheck {
		return noMatch()
	}
	return TierResult{Matched: true, Type: "missed_tactic", Reason: "missed a tactical opportunity while still in a playable position"}
}

// DetectMistake implements the Mistake tier detector.
func DetectMistake(in TierInput) TierResult {
	before := playerEval(in.EvalBefore, in.IsWhiteMove)
	after := playerEval(in.EvalAfter, in.IsWhiteMove)

	if before <= -300 {
		return noMatch()
	}
	if after >= 150 {
		return noMatch()
	}
	if in.IsMateContext {
		return noMatch()
	}
	if in.MoveNumber < 4 {
		return noMatch()
	}

	if in.CentipawnLoss >= 100 && in.CentipawnLoss < 250 {
		return TierResult{Matched: true, Type: "standard", Reason: "cp loss in the mistake band"}
	}
	if before >= 80 && absInt(after) <= 60 && in.CentipawnLoss >= 70 {
		return TierResult{Matched: true, Type: "advantage_loss", Reason: "a clear advantage evaporated"}
	}
	return noMatch()
}

// DetectBlunder implements the Blunder tier detector.
func DetectBlunder(in TierInput) TierResult {
	before := playerEval(in.EvalBefore, in.IsWhiteMove)
	after := playerEval(in.EvalAfter, in.IsWhiteMove)

	if before <= -600 {
		return noMatch()
	}
	if in.IsMateContext {
		return noMatch()
	}
	if in.MoveNumber < 3 {
		return noMatch()
	}
	if after >= 200 {
		return noMatch()
	}

	_, afterForOpponent, afterDist := mateFacts(in.EvalAfter, !in.IsWhiteMove)
	if afterForOpponent && afterDist <= 5 {
		return TierResult{Matched: true, Type: "mate_blindness", Reason: "allows a forced mate in 5 or fewer"}
	}
	_, beforeForPlayer, beforeDist := mateFacts(in.EvalBefore, in.IsWhiteMove)
	_, afterForPlayerNow, _ := mateFacts(in.EvalAfter, in.IsWhiteMove)
	if beforeForPlayer && beforeDist <= 5 && !afterForPlayerNow {
		return TierResult{Matched: true, Type: "mate_blindness", Reason: "threw away a forced mate"}
	}
	if absInt(after) >= 10000 && absInt(after-before) >= 500 {
		return TierResult{Matched: true, Type: "mate_blindness", Reason: "swings into or out of a mate score"}
	}

	if in.CentipawnLoss >= 250 {
		for _, v := range []int{PieceValue(chessrules.Pawn), PieceValue(chessrules.Knight), PieceValue(chessrules.Bishop), PieceValue(chessrules.Rook), PieceValue(chessrules.Queen)} {
			if absInt(in.CentipawnLoss-v) <= 80 {
				return TierResult{Matched: true, Type: "hanging_piece", Reason: "cp loss matches a hung piece's value"}
			}
		}
	}

	if before >= 200 && after <= -200 && (before-after) >= 400 {
		return TierResult{Matched: true, Type: "game_turning", Reason: "a winning position turned into a losing one"}
	}
	if before > -50 && before < 50 && after <= -200 {
		return TierResult{Matched: true, Type: "game_turning", Reason: "an equal position turned losing"}
	}

	if in.CentipawnLoss >= 250 {
		return TierResult{Matched: true, Type: "standard", Reason: "cp loss exceeds the blunder threshold"}
	}
	return noMatch()
}
