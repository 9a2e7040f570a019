package classify

import "github.com/chessreview/review/internal/chessrules"

// BrilliantInput bundles everything the detector needs beyond what
// MoveContext already carries: chess-rules-level facts about the
// position, and the already-computed loss for this ply.
type BrilliantInput struct {
	Move          chessrules.Move
	WasInCheck    bool
	OnlyLegalMove bool
	MoveNumber    int
	EvalBefore    Score
	EvalAfter     Score
	EvalIfBest    Score
	IsWhiteMove   bool
	CentipawnLoss int
	BestMoveUCI   string
	PlayedUCI     string
	PosBefore     *chessrules.Position
	PosAfter      *chessrules.Position
	TopMovesAfter []TopMove
	HadMateBefore bool // player already had a forced mate before this move
}

// BrilliantResult is the detector's verdict plus a diagnostic trail.
type BrilliantResult struct {
	IsBrilliant bool
	Type        string // "sacrifice" when IsBrilliant
	Reason      string
	Confidence  int
}

func reject(reason string) BrilliantResult { return BrilliantResult{Reason: reason} }

// DetectBrilliant runs the fourteen-step rejection cascade followed by the
// sacrifice/trap acceptance checks (C7).
func DetectBrilliant(in BrilliantInput) BrilliantResult {
	if in.WasInCheck {
		return reject("mover was in check: all responses are forced")
	}
	if in.OnlyLegalMove {
		return reject("only one legal move existed")
	}

	if qs := queenSacWithMate(in); qs.IsBrilliant {
		return qs
	}

	before := int(in.EvalBefore.ToPlayerPerspective(in.IsWhiteMove))
	after := int(in.EvalAfter.ToPlayerPerspective(in.IsWhiteMove))
	bestCP := int(in.EvalIfBest.ToPlayerPerspective(in.IsWhiteMove))

	if before > 300 {
		return reject("already winning before the move")
	}

	if tt, ok := tacticalTrapSacrifice(in); ok {
		if in.CentipawnLoss <= 60 && before >= -200 && !in.HadMateBefore {
			return finalizeBrilliant(tt, in)
		}
	}

	withinTwenty := absInt(after-bestCP) <= 20
	if in.PlayedUCI != in.BestMoveUCI && !withinTwenty {
		return reject("not the best move and not within 20cp of it")
	}

	if in.CentipawnLoss > 25 {
		return reject("centipawn loss exceeds the brilliant ceiling")
	}

	if in.MoveNumber <= 10 {
		return reject("still in the book phase")
	}

	if in.Move.Piece == chessrules.Pawn && !in.Move.IsCapture && in.Move.Promotion == chessrules.NoPieceType {
		return reject("simple pawn push")
	}

	if mateDistanceUnchanged(in) {
		return reject("mate distance essentially unchanged")
	}

	if in.Move.IsCapture && in.PosAfter != nil && !hasRecapture(in.PosAfter, in.Move.To) {
		return reject("simple free capture of an undefended piece")
	}

	// Only the legal-move count is checked; the gap to the engine's second
	// choice is not consulted.
	if in.Move.Piece == chessrules.King && in.Move.IsCapture && in.PosBefore != nil && len(in.PosBefore.LegalMoves()) <= 3 {
		return reject("simple king recapture in a near-forced position")
	}

	capturedValue := PieceValue(in.Move.Captured)
	movedValue := PieceValue(in.Move.Piece)
	if in.Move.IsCapture {
		recaptureExists := in.PosAfter != nil && hasRecapture(in.PosAfter, in.Move.To)
		if capturedValue >= movedValue-100 || recaptureExists {
			return reject("simple recapture or even trade")
		}
		swing := after - before
		if capturedValue >= movedValue && absInt(swing-capturedValue) <= 150 {
			return reject("simple material gain matching the captured value")
		}
	}

	sac := AnalyzeSacrifice(in.Move, in.EvalBefore, in.EvalAfter, in.IsWhiteMove, in.PosAfter, in.TopMovesAfter)
	swing := after - before

	accepted := sac.HasCompensation && before >= -200 && !in.HadMateBefore &&
		(sac.IsHangingPieceSacrifice || (sac.LeadsToMate && !in.HadMateBefore) || swing >= 150)
	if !accepted {
		return reject("sacrifice analyzer found no accepted compensation")
	}

	return finalizeBrilliant(sac, in)
}

// finalizeBrilliant re-runs the post-acceptance false-positive filters
// before committing to Brilliant.
func finalizeBrilliant(sac SacrificeResult, in BrilliantInput) BrilliantResult {
	if in.Move.Piece == chessrules.Queen && in.Move.Captured == chessrules.Queen {
		return reject("automatic queen for queen trade")
	}
	if sac.ImmediateReturn > sac.SacValue {
		return reject("immediate return exceeds the sacrificed value")
	}
	if absInt(sac.SacValue-sac.ImmediateReturn) < 50 {
		return reject("regular trade, not a real sacrifice")
	}

	confidence := 80
	if sac.LeadsToMate {
		confidence = 95
	} else if sac.IsHangingPieceSacrifice {
		confidence = 85
	}

	return BrilliantResult{
		IsBrilliant: true,
		Type:        "sacrifice",
		Reason:      "proven compensation for an unexpected sacrifice",
		Confidence:  confidence,
	}
}

// queenSacWithMate is the short-circuit: a checking queen move where the
// only reasonable way out for the opponent either loses to an immediate
// recapture of the capturing piece, or at least one capturing response
// allows a forced mate while a non-capturing response also exists (so the
// sacrifice was a genuine choice, not forced upon the opponent).
func queenSacWithMate(in BrilliantInput) BrilliantResult {
	if in.Move.Piece != chessrules.Queen || !in.Move.IsCheck || in.PosAfter == nil {
		return BrilliantResult{}
	}

	replies := in.PosAfter.LegalMoves()
	captures := make([]chessrules.Move, 0)
	nonCaptures := 0
	for _, r := range replies {
		if r.To == in.Move.To && r.IsCapture {
			captures = append(captures, r)
		} else {
			nonCaptures++
		}
	}

	if len(replies) == 1 && len(captures) == 1 {
		after, err := in.PosAfter.Apply(captures[0].UCI())
		if err == nil {
			for _, follow := range after.LegalMoves() {
				if follow.To == captures[0].To && follow.IsCapture {
					return BrilliantResult{IsBrilliant: true, Type: "sacrifice", Reason: "forced queen sacrifice with an immediate recapture", Confidence: 99}
				}
			}
		}
		return BrilliantResult{}
	}

	if nonCaptures == 0 {
		return BrilliantResult{}
	}

	for _, c := range captures {
		after, err := in.PosAfter.Apply(c.UCI())
		if err != nil {
			continue
		}
		for _, follow := range after.LegalMoves() {
			result, err := after.Apply(follow.UCI())
			if err == nil && result.IsCheckmate() {
				return BrilliantResult{IsBrilliant: true, Type: "sacrifice", Reason: "queen sacrifice forces mate if the opponent accepts", Confidence: 99}
			}
		}
	}

	return BrilliantResult{}
}

// tacticalTrapSacrifice recognizes a capture that leaves the moved piece
// en prise on its destination, where accepting the capture is
// demonstrably bad for the opponent, with net value given up >= 100.
func tacticalTrapSacrifice(in BrilliantInput) (SacrificeResult, bool) {
	if !in.Move.IsCapture || in.PosAfter == nil {
		return SacrificeResult{}, false
	}
	net := PieceValue(in.Move.Piece) - PieceValue(in.Move.Captured)
	if net < 100 {
		return SacrificeResult{}, false
	}
	sac := AnalyzeSacrifice(in.Move, in.EvalBefore, in.EvalAfter, in.IsWhiteMove, in.PosAfter, in.TopMovesAfter)
	if sac.IsHangingPieceSacrifice && sac.TakingIsMistake {
		return sac, true
	}
	return SacrificeResult{}, false
}

func mateDistanceUnchanged(in BrilliantInput) bool {
	beforeMate, beforeForPlayer, beforeDist := mateFacts(in.EvalBefore, in.IsWhiteMove)
	afterMate, afterForPlayer, afterDist := mateFacts(in.EvalAfter, in.IsWhiteMove)
	if !beforeMate || !afterMate || !beforeForPlayer || !afterForPlayer {
		return false
	}
	return afterDist >= beforeDist-1
}

// hasRecapture reports whether the side to move in pos has a legal
// capture landing on square.
func hasRecapture(pos *chessrules.Position, square string) bool {
	for _, m := range pos.LegalMoves() {
		if m.To == square && m.IsCapture {
			return true
		}
	}
	return false
}
