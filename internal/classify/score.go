package classify

import (
	"strings"

	"github.com/chessreview/review/internal/chessrules"
)

// PieceValue is the canonical centipawn value table used throughout the
// cascade: P 100, N 320, B 330, R 500, Q 900, K 20000.
func PieceValue(pt chessrules.PieceType) int {
	switch pt {
	case chessrules.Pawn:
		return 100
	case chessrules.Knight:
		return 320
	case chessrules.Bishop:
		return 330
	case chessrules.Rook:
		return 500
	case chessrules.Queen:
		return 900
	case chessrules.King:
		return 20000
	default:
		return 0
	}
}

// MaterialCount sums Q=9,R=5,B=3,N=3 across both colors, reading only the
// piece-placement field of a FEN (pawns and kings are not counted, per
// the spec's definition of this utility).
func MaterialCount(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return 0
	}
	placement := fields[0]

	total := 0
	for _, r := range placement {
		switch r {
		case 'q', 'Q':
			total += 9
		case 'r', 'R':
			total += 5
		case 'b', 'B', 'n', 'N':
			total += 3
		}
	}
	return total
}
