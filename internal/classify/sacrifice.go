package classify

import (
	"strings"

	"github.com/chessreview/review/internal/chessrules"
)

// CompensationType names what, if anything, justifies a material outlay.
type CompensationType int

const (
	CompNone CompensationType = iota
	CompMate
	CompMaterial
	CompPositional
	CompTrap
)

func (c CompensationType) String() string {
	switch c {
	case CompMate:
		return "mate"
	case CompMaterial:
		return "material"
	case CompPositional:
		return "positional"
	case CompTrap:
		return "trap"
	default:
		return "none"
	}
}

// SacrificeResult is the outcome of analyzing one played move for
// material sacrifice, direct or of the hanging-piece variety.
type SacrificeResult struct {
	IsSacrifice             bool
	Type                    string // "direct" or "hanging_piece"
	SacValue                int
	ImmediateReturn         int
	Net                     int
	HasCompensation         bool
	CompensationType        CompensationType
	LeadsToMate             bool
	MateIn                  int
	IsHangingPieceSacrifice bool
	TakingIsMistake         bool
}

// directCompensationThreshold returns, for the piece given up, the swing
// (in cp, player perspective) required to call the sacrifice compensated.
func directCompensationThreshold(piece chessrules.PieceType) int {
	switch piece {
	case chessrules.Queen:
		return 600
	case chessrules.Rook:
		return 400
	case chessrules.Knight, chessrules.Bishop:
		return 250
	default:
		return 300
	}
}

// AnalyzeSacrifice implements the sacrifice analyzer (C6). posAfter may be
// nil when fen_after could not be computed; the hanging-piece mode then
// degrades to "not a hanging-piece sacrifice" rather than erroring, per
// the spec's fallback-to-fen_before policy.
func AnalyzeSacrifice(move chessrules.Move, evalBefore, evalAfter Score, isWhiteMove bool, posAfter *chessrules.Position, topMovesAfter []TopMove) SacrificeResult {
	res := directSacrifice(move, evalBefore, evalAfter, isWhiteMove)
	if res.IsSacrifice {
		return res
	}

	if move.IsCapture && posAfter != nil {
		if hanging, ok := hangingPieceSacrifice(move, evalAfter, isWhiteMove, posAfter, topMovesAfter); ok {
			return hanging
		}
	}

	return res
}

func directSacrifice(move chessrules.Move, evalBefore, evalAfter Score, isWhiteMove bool) SacrificeResult {
	sacValue := PieceValue(move.Piece)
	immediateReturn := PieceValue(move.Captured)
	net := sacValue - immediateReturn

	res := SacrificeResult{
		Type:            "direct",
		SacValue:        sacValue,
		ImmediateReturn: immediateReturn,
		Net:             net,
	}

	if net < 300 || immediateReturn > 100 {
		return res
	}

	before := int(evalBefore.ToPlayerPerspective(isWhiteMove))
	after := int(evalAfter.ToPlayerPerspective(isWhiteMove))
	swing := after - before + net

	afterMate, afterForPlayer, dist := mateFacts(evalAfter, isWhiteMove)
	if afterMate && afterForPlayer {
		res.LeadsToMate = true
		res.MateIn = dist
	}

	threshold := directCompensationThreshold(move.Piece)
	hasCompensation := swing >= threshold
	if move.Piece == chessrules.Queen && res.LeadsToMate && res.MateIn <= 8 {
		hasCompensation = true
	}
	if swing < 0 {
		hasCompensation = false
	}

	res.IsSacrifice = true
	res.HasCompensation = hasCompensation
	if hasCompensation {
		switch {
		case res.LeadsToMate && res.MateIn <= 8:
			res.CompensationType = CompMate
		case swing >= threshold:
			res.CompensationType = CompMaterial
		default:
			res.CompensationType = CompPositional
		}
	} else {
		res.CompensationType = CompNone
	}

	return res
}

// hangingPieceSacrifice implements the second sacrifice mode: the moved
// piece is left capturable on its destination square, and that capture is
// demonstrably bad for the opponent.
func hangingPieceSacrifice(move chessrules.Move, evalAfter Score, isWhiteMove bool, posAfter *chessrules.Position, topMovesAfter []TopMove) (SacrificeResult, bool) {
	victimValue := PieceValue(move.Piece)
	alreadyCaptured := PieceValue(move.Captured)

	for _, reply := range posAfter.LegalMoves() {
		if reply.To != move.To || !reply.IsCapture {
			continue
		}
		if victimValue-alreadyCaptured < 300 {
			continue
		}

		mistake := replyIsMistake(reply, posAfter, evalAfter, isWhiteMove, topMovesAfter)
		if !mistake {
			continue
		}

		return SacrificeResult{
			IsSacrifice:             true,
			Type:                    "hanging_piece",
			SacValue:                victimValue,
			ImmediateReturn:         alreadyCaptured,
			Net:                     victimValue - alreadyCaptured,
			HasCompensation:         true,
			CompensationType:        CompTrap,
			IsHangingPieceSacrifice: true,
			TakingIsMistake:         true,
		}, true
	}

	return SacrificeResult{}, false
}

// replyIsMistake decides whether the opponent capturing on move.To is a
// mistake, via the three signals in §4.6(b): a cp-loss comparison against
// the opponent's own top moves when available, a one-ply mate/fork search,
// and a weak eval-based fallback.
func replyIsMistake(reply chessrules.Move, posAfter *chessrules.Position, evalAfter Score, isWhiteMove bool, topMovesAfter []TopMove) bool {
	replyUCI := reply.UCI()

	if len(topMovesAfter) > 0 {
		best := topMovesAfter[0]
		if !strings.EqualFold(best.UCI, replyUCI) {
			found := false
			for _, tm := range topMovesAfter {
				if strings.EqualFold(tm.UCI, replyUCI) {
					found = true
					if absInt(int(tm.CP)-int(best.CP)) >= 100 {
						return true
					}
				}
			}
			if !found {
				return true
			}
		}
	}

	afterReply, err := posAfter.Apply(replyUCI)
	if err == nil {
		for _, follow := range afterReply.LegalMoves() {
			if follow.IsCheck && follow.IsCapture && PieceValue(follow.Captured) >= 500 {
				return true
			}
			result, err := afterReply.Apply(follow.UCI())
			if err == nil && result.IsCheckmate() {
				return true
			}
		}
	}

	after := int(evalAfter.ToPlayerPerspective(isWhiteMove))
	if after >= 100 {
		return true
	}
	_, forPlayer, _ := mateFacts(evalAfter, isWhiteMove)
	return forPlayer
}
