package classify

import (
	"fmt"

	"github.com/chessreview/review/internal/chessrules"
)

// Theme is one recognized tactical pattern on a candidate move.
type Theme struct {
	Name        string
	Confidence  int
	Description string
}

type square struct{ file, rank int }

func squareName(s square) string {
	return string(rune('a'+s.file)) + string(rune('1'+s.rank))
}

func squareCoords(name string) (square, bool) {
	if len(name) != 2 {
		return square{}, false
	}
	f := int(name[0] - 'a')
	r := int(name[1] - '1')
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return square{}, false
	}
	return square{f, r}, true
}

func onBoard(s square) bool { return s.file >= 0 && s.file <= 7 && s.rank >= 0 && s.rank <= 7 }

var knightOffsets = []square{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = []square{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = []square{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = []square{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// rayPath walks from s in direction d, one square at a time, and stops
// after the first occupied square (inclusive). It never needs to know the
// occupant's color: a sliding piece attacks whatever first blocks its line
// of sight, friend or foe.
func rayPath(pos *chessrules.Position, s, d square) []square {
	var path []square
	cur := square{s.file + d.file, s.rank + d.rank}
	for onBoard(cur) {
		path = append(path, cur)
		if _, _, ok := pos.PieceAt(squareName(cur)); ok {
			break
		}
		cur = square{cur.file + d.file, cur.rank + d.rank}
	}
	return path
}

func containsSquare(path []square, target square) bool {
	for _, s := range path {
		if s == target {
			return true
		}
	}
	return false
}

func indexOf(path []square, target square) int {
	for i, s := range path {
		if s == target {
			return i
		}
	}
	return -1
}

// attacks reports whether a piece of the given type and color sitting on
// from attacks the to square, independent of whose turn it is.
func attacks(pos *chessrules.Position, from square, pt chessrules.PieceType, color chessrules.Color, to square) bool {
	switch pt {
	case chessrules.Knight:
		for _, o := range knightOffsets {
			if (square{from.file + o.file, from.rank + o.rank}) == to {
				return true
			}
		}
	case chessrules.King:
		for _, o := range kingOffsets {
			if (square{from.file + o.file, from.rank + o.rank}) == to {
				return true
			}
		}
	case chessrules.Pawn:
		dir := 1
		if color == chessrules.Black {
			dir = -1
		}
		for _, df := range []int{-1, 1} {
			if (square{from.file + df, from.rank + dir}) == to {
				return true
			}
		}
	case chessrules.Bishop:
		for _, d := range bishopDirs {
			if containsSquare(rayPath(pos, from, d), to) {
				return true
			}
		}
	case chessrules.Rook:
		for _, d := range rookDirs {
			if containsSquare(rayPath(pos, from, d), to) {
				return true
			}
		}
	case chessrules.Queen:
		for _, d := range append(append([]square{}, bishopDirs...), rookDirs...) {
			if containsSquare(rayPath(pos, from, d), to) {
				return true
			}
		}
	}
	return false
}

func findKing(pos *chessrules.Position, color chessrules.Color) (square, bool) {
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			s := square{f, r}
			pt, col, ok := pos.PieceAt(squareName(s))
			if ok && pt == chessrules.King && col == color {
				return s, true
			}
		}
	}
	return square{}, false
}

func attackersOf(pos *chessrules.Position, target square, byColor chessrules.Color) int {
	count := 0
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			from := square{f, r}
			pt, col, ok := pos.PieceAt(squareName(from))
			if !ok || col != byColor || from == target {
				continue
			}
			if attacks(pos, from, pt, col, target) {
				count++
			}
		}
	}
	return count
}

func isAttackedBy(pos *chessrules.Position, target square, byColor chessrules.Color) bool {
	return attackersOf(pos, target, byColor) > 0
}

// DetectTheme implements the tactical theme detector (C12): it applies the
// candidate move and walks the prioritized list of patterns, returning the
// first match. It always returns a theme (the spec's winning_material
// fallback) unless the move itself cannot be resolved or applied.
func DetectTheme(fenBefore, candidateUCI string, evalBefore, evalAfter *Score) (Theme, bool) {
	before, err := chessrules.LoadFEN(fenBefore)
	if err != nil {
		return Theme{}, false
	}
	move, ok := before.FindMove(candidateUCI)
	if !ok {
		return Theme{}, false
	}
	after, err := before.Apply(candidateUCI)
	if err != nil {
		return Theme{}, false
	}

	mover := before.SideToMove()
	opponent := mover.Opposite()
	toSq, _ := squareCoords(move.To)
	fromSq, _ := squareCoords(move.From)

	if t, ok := smotheredMate(after, move, opponent); ok {
		return t, true
	}
	if t, ok := backRank(move, opponent, toSq); ok {
		return t, true
	}
	if t, ok := doubleCheck(after, mover, opponent); ok {
		return t, true
	}
	if t, ok := discoveredAttack(after, mover, opponent, fromSq, toSq); ok {
		return t, true
	}
	if t, ok := deflection(before, after, move, mover, opponent); ok {
		return t, true
	}
	if t, ok := fork(after, mover, opponent, toSq); ok {
		return t, true
	}
	if t, ok := pinOrSkewer(after, mover, toSq, move.Piece); ok {
		return t, true
	}
	if t, ok := trappedPiece(move); ok {
		return t, true
	}
	if t, ok := zwischenzug(move); ok {
		return t, true
	}
	if t, ok := materialGainTheme(move, evalBefore, evalAfter, mover); ok {
		return t, true
	}
	if t, ok := mateThreat(after, evalAfter, mover); ok {
		return t, true
	}

	return Theme{Name: "winning_material", Confidence: 30, Description: "no sharper pattern found; the move simply wins material"}, true
}

func smotheredMate(after *chessrules.Position, move chessrules.Move, opponent chessrules.Color) (Theme, bool) {
	if move.Piece != chessrules.Knight || !after.IsCheckmate() {
		return Theme{}, false
	}
	kingSq, ok := findKing(after, opponent)
	if !ok {
		return Theme{}, false
	}
	blocked := 0
	for _, o := range kingOffsets {
		adj := square{kingSq.file + o.file, kingSq.rank + o.rank}
		if !onBoard(adj) {
			continue
		}
		pt, col, ok := after.PieceAt(squareName(adj))
		if ok && col == opponent && pt != chessrules.King {
			blocked++
		}
	}
	if blocked >= 3 {
		return Theme{Name: "smothered_mate", Confidence: 95, Description: "the king is mated by a knight with no flight square, boxed in by its own pieces"}, true
	}
	return Theme{}, false
}

func backRank(move chessrules.Move, opponent chessrules.Color, toSq square) (Theme, bool) {
	home := 0
	if opponent == chessrules.White {
		home = 0
	} else {
		home = 7
	}
	if (move.IsCheck || move.IsMate) && toSq.rank == home {
		return Theme{Name: "back_rank", Confidence: 90, Description: "the check lands on the opponent's back rank"}, true
	}
	if (move.Piece == chessrules.Rook || move.Piece == chessrules.Queen) && toSq.rank == home {
		return Theme{Name: "back_rank", Confidence: 55, Description: "a major piece infiltrates the back rank"}, true
	}
	return Theme{}, false
}

func doubleCheck(after *chessrules.Position, mover, opponent chessrules.Color) (Theme, bool) {
	kingSq, ok := findKing(after, opponent)
	if !ok {
		return Theme{}, false
	}
	if attackersOf(after, kingSq, mover) >= 2 {
		return Theme{Name: "double_check", Confidence: 95, Description: "two pieces attack the king at once, forcing the king to move"}, true
	}
	return Theme{}, false
}

func discoveredAttack(after *chessrules.Position, mover, opponent chessrules.Color, fromSq, toSq square) (Theme, bool) {
	kingSq, hasKing := findKing(after, opponent)
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			src := square{f, r}
			if src == toSq {
				continue
			}
			pt, col, ok := after.PieceAt(squareName(src))
			if !ok || col != mover {
				continue
			}
			var dirs []square
			switch pt {
			case chessrules.Bishop:
				dirs = bishopDirs
			case chessrules.Rook:
				dirs = rookDirs
			case chessrules.Queen:
				dirs = append(append([]square{}, bishopDirs...), rookDirs...)
			default:
				continue
			}
			for _, d := range dirs {
				path := rayPath(after, src, d)
				if hasKing {
					if idx := indexOf(path, kingSq); idx >= 0 {
						if fi := indexOf(path, fromSq); fi >= 0 && fi < idx {
							return Theme{Name: "discovered_attack", Confidence: 80, Description: "vacating the square unmasks an attack on the king"}, true
						}
					}
				}
				for pf := 0; pf < 8; pf++ {
					for pr := 0; pr < 8; pr++ {
						target := square{pf, pr}
						tpt, tcol, tok := after.PieceAt(squareName(target))
						if !tok || tcol != opponent || PieceValue(tpt) < 500 {
							continue
						}
						idx := indexOf(path, target)
						if idx < 0 {
							continue
						}
						if fi := indexOf(path, fromSq); fi >= 0 && fi < idx {
							return Theme{Name: "discovered_attack", Confidence: 80, Description: "vacating the square unmasks an attack on a major piece"}, true
						}
					}
				}
			}
		}
	}
	return Theme{}, false
}

func deflection(before, after *chessrules.Position, move chessrules.Move, mover, opponent chessrules.Color) (Theme, bool) {
	if !move.IsCapture {
		return Theme{}, false
	}
	capturedAt, ok := squareCoords(move.To)
	if !ok {
		return Theme{}, false
	}
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			defended := square{f, r}
			pt, col, ok := before.PieceAt(squareName(defended))
			if !ok || col != opponent || PieceValue(pt) < 500 || defended == capturedAt {
				continue
			}
			if !attacks(before, capturedAt, move.Captured, opponent, defended) {
				continue
			}
			if isAttackedBy(after, defended, mover) {
				return Theme{Name: "deflection", Confidence: 75, Description: "the capture removes a defender, leaving a valuable piece exposed"}, true
			}
		}
	}
	return Theme{}, false
}

func fork(after *chessrules.Position, mover, opponent chessrules.Color, toSq square) (Theme, bool) {
	pt, col, ok := after.PieceAt(squareName(toSq))
	if !ok || col != mover {
		return Theme{}, false
	}
	count := 0
	valueSum := 0
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			target := square{f, r}
			tpt, tcol, tok := after.PieceAt(squareName(target))
			if !tok || tcol != opponent {
				continue
			}
			if attacks(after, toSq, pt, mover, target) {
				count++
				if tpt != chessrules.King {
					valueSum += PieceValue(tpt)
				}
			}
		}
	}
	if count < 2 {
		return Theme{}, false
	}
	if pt == chessrules.Knight {
		return Theme{Name: "fork", Confidence: 85, Description: "the knight forks two or more pieces at once"}, true
	}
	if valueSum >= PieceValue(chessrules.Rook)+PieceValue(chessrules.Knight) {
		return Theme{Name: "fork", Confidence: 65, Description: "the piece attacks multiple targets worth at least a rook and a knight combined"}, true
	}
	return Theme{}, false
}

func pinOrSkewer(after *chessrules.Position, mover chessrules.Color, toSq square, pt chessrules.PieceType) (Theme, bool) {
	var dirs []square
	switch pt {
	case chessrules.Bishop:
		dirs = bishopDirs
	case chessrules.Rook:
		dirs = rookDirs
	case chessrules.Queen:
		dirs = append(append([]square{}, bishopDirs...), rookDirs...)
	default:
		return Theme{}, false
	}
	for _, d := range dirs {
		var occupied []square
		cur := square{toSq.file + d.file, toSq.rank + d.rank}
		for onBoard(cur) {
			if _, _, ok := after.PieceAt(squareName(cur)); ok {
				occupied = append(occupied, cur)
				if len(occupied) == 2 {
					break
				}
			}
			cur = square{cur.file + d.file, cur.rank + d.rank}
		}
		if len(occupied) < 2 {
			continue
		}
		firstPt, firstCol, _ := after.PieceAt(squareName(occupied[0]))
		secondPt, secondCol, _ := after.PieceAt(squareName(occupied[1]))
		if firstCol == mover || secondCol == mover {
			continue
		}
		firstVal, secondVal := PieceValue(firstPt), PieceValue(secondPt)
		if firstVal < secondVal {
			return Theme{Name: "pin", Confidence: 70, Description: "the front piece is pinned to a more valuable piece behind it"}, true
		}
		return Theme{Name: "skewer", Confidence: 70, Description: "the front piece must move, exposing a less valuable piece behind it"}, true
	}
	return Theme{}, false
}

func trappedPiece(move chessrules.Move) (Theme, bool) {
	if move.IsCapture && PieceValue(move.Captured) >= PieceValue(chessrules.Bishop) {
		return Theme{Name: "trapped_piece", Confidence: 40, Description: "the captured piece had no safe retreat"}, true
	}
	return Theme{}, false
}

func zwischenzug(move chessrules.Move) (Theme, bool) {
	if move.IsCapture && move.IsCheck {
		return Theme{Name: "zwischenzug", Confidence: 60, Description: "an in-between capture with check, inserted before the expected continuation"}, true
	}
	return Theme{}, false
}

func materialGainTheme(move chessrules.Move, evalBefore, evalAfter *Score, mover chessrules.Color) (Theme, bool) {
	if move.IsCapture {
		switch move.Captured {
		case chessrules.Queen, chessrules.Rook, chessrules.Knight, chessrules.Bishop:
			return Theme{Name: "material_gain", Confidence: 50, Description: fmt.Sprintf("captures a %s outright", pieceLabel(move.Captured))}, true
		}
	}
	if evalBefore != nil && evalAfter != nil {
		swing := evalAfter.ToPlayerPerspective(mover == chessrules.White) - evalBefore.ToPlayerPerspective(mover == chessrules.White)
		if int(swing) >= 300 {
			return Theme{Name: "material_gain", Confidence: 45, Description: "the evaluation swings sharply in the mover's favor"}, true
		}
	}
	return Theme{}, false
}

func mateThreat(after *chessrules.Position, evalAfter *Score, mover chessrules.Color) (Theme, bool) {
	if after.IsCheckmate() {
		return Theme{Name: "mate_threat", Confidence: 85, Description: "the move delivers checkmate"}, true
	}
	if evalAfter != nil && absInt(playerEval(*evalAfter, mover == chessrules.White)) > 10000 {
		return Theme{Name: "mate_threat", Confidence: 85, Description: "the resulting position is a forced mate"}, true
	}
	return Theme{}, false
}

func pieceLabel(pt chessrules.PieceType) string {
	switch pt {
	case chessrules.Pawn:
		return "pawn"
	case chessrules.Knight:
		return "knight"
	case chessrules.Bishop:
		return "bishop"
	case chessrules.Rook:
		return "rook"
	case chessrules.Queen:
		return "queen"
	case chessrules.King:
		return "king"
	default:
		return "piece"
	}
}

// MaterialGain implements the companion helper exposed alongside the theme
// detector: the larger of the captured piece's value and the eval swing,
// when both evaluations are supplied.
func MaterialGain(fenBefore, candidateUCI string, evalBefore, evalAfter *Score) (int, bool) {
	before, err := chessrules.LoadFEN(fenBefore)
	if err != nil {
		return 0, false
	}
	move, ok := before.FindMove(candidateUCI)
	if !ok {
		return 0, false
	}
	gain := 0
	if move.IsCapture {
		gain = PieceValue(move.Captured)
	}
	if evalBefore != nil && evalAfter != nil {
		mover := before.SideToMove()
		swing := int(evalAfter.ToPlayerPerspective(mover == chessrules.White) - evalBefore.ToPlayerPerspective(mover == chessrules.White))
		if swing > gain {
			gain = swing
		}
	}
	return gain, true
}
